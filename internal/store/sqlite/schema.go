package sqlite

// schema defines the SQL statements to create database tables.
//
// Money columns are TEXT holding exact decimal strings; dates are TEXT in
// RFC 3339. The transactions seq column is the global posting order used to
// break date ties. Foreign keys carry the ownership cascades: an account
// takes its transactions with it, a document takes its line items.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    institution TEXT NOT NULL DEFAULT '',
    number_mask TEXT NOT NULL DEFAULT '',
    kind        TEXT NOT NULL,
    balance     TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS transactions (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    id          TEXT NOT NULL UNIQUE,
    account_id  TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    date        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount      TEXT NOT NULL,
    invoice_id  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_transactions_account
    ON transactions(account_id, date);

CREATE INDEX IF NOT EXISTS idx_transactions_invoice
    ON transactions(invoice_id) WHERE invoice_id <> '';

CREATE TABLE IF NOT EXISTS petty_cash_entries (
    id                 TEXT PRIMARY KEY,
    date               TEXT NOT NULL,
    description        TEXT NOT NULL DEFAULT '',
    kind               TEXT NOT NULL,
    amount             TEXT NOT NULL,
    status             TEXT NOT NULL,
    funding_account_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS contacts (
    id      TEXT PRIMARY KEY,
    name    TEXT NOT NULL,
    email   TEXT NOT NULL DEFAULT '',
    phone   TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    type    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
    id         TEXT PRIMARY KEY,
    number     TEXT NOT NULL UNIQUE,
    contact_id TEXT NOT NULL,
    issue_date TEXT NOT NULL,
    due_date   TEXT NOT NULL,
    status     TEXT NOT NULL,
    tax_rate   TEXT NOT NULL,
    subtotal   TEXT NOT NULL,
    tax        TEXT NOT NULL,
    total      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invoices_contact
    ON invoices(contact_id);

CREATE TABLE IF NOT EXISTS invoice_items (
    rowid_pk    INTEGER PRIMARY KEY AUTOINCREMENT,
    invoice_id  TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    quantity    TEXT NOT NULL,
    unit_price  TEXT NOT NULL,
    total       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quotes (
    id          TEXT PRIMARY KEY,
    number      TEXT NOT NULL UNIQUE,
    contact_id  TEXT NOT NULL,
    issue_date  TEXT NOT NULL,
    expiry_date TEXT NOT NULL,
    status      TEXT NOT NULL,
    tax_rate    TEXT NOT NULL,
    subtotal    TEXT NOT NULL,
    tax         TEXT NOT NULL,
    total       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quote_items (
    rowid_pk    INTEGER PRIMARY KEY AUTOINCREMENT,
    quote_id    TEXT NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    quantity    TEXT NOT NULL,
    unit_price  TEXT NOT NULL,
    total       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS purchases (
    id         TEXT PRIMARY KEY,
    number     TEXT NOT NULL UNIQUE,
    contact_id TEXT NOT NULL,
    date       TEXT NOT NULL,
    subtotal   TEXT NOT NULL,
    vat        TEXT NOT NULL,
    total      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS purchase_items (
    rowid_pk    INTEGER PRIMARY KEY AUTOINCREMENT,
    purchase_id TEXT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount      TEXT NOT NULL,
    vat         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    unit_price  TEXT NOT NULL,
    kind        TEXT NOT NULL
);
`
