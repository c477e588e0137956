package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/model"
)

// --- invoices ---

func (s *Store) CreateInvoice(ctx context.Context, inv model.Invoice) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO invoices (id, number, contact_id, issue_date, due_date, status, tax_rate, subtotal, tax, total)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, inv.Number, inv.ContactID, fmtDate(inv.IssueDate), fmtDate(inv.DueDate),
			string(inv.Status), inv.TaxRatePercent.String(),
			inv.Subtotal.String(), inv.Tax.String(), inv.Total.String()); err != nil {
			return persistErr("inserting invoice", err)
		}
		return insertLineItems(ctx, tx, "invoice_items", "invoice_id", inv.ID, inv.Items)
	})
	if err != nil {
		return err
	}
	s.publish(events.KindCreated, "invoice", inv.ID)
	return nil
}

func (s *Store) Invoice(ctx context.Context, id string) (model.Invoice, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, number, contact_id, issue_date, due_date, status, tax_rate, subtotal, tax, total
		 FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return model.Invoice{}, notFoundOr("scanning invoice", "invoice", id, err)
	}
	items, err := s.lineItems(ctx, "invoice_items", "invoice_id", id)
	if err != nil {
		return model.Invoice{}, err
	}
	inv.Items = items
	return inv, nil
}

func (s *Store) Invoices(ctx context.Context) ([]model.Invoice, error) {
	return s.listInvoices(ctx,
		`SELECT id, number, contact_id, issue_date, due_date, status, tax_rate, subtotal, tax, total
		 FROM invoices ORDER BY rowid`)
}

func (s *Store) InvoicesByContact(ctx context.Context, contactID string) ([]model.Invoice, error) {
	return s.listInvoices(ctx,
		`SELECT id, number, contact_id, issue_date, due_date, status, tax_rate, subtotal, tax, total
		 FROM invoices WHERE contact_id = ? ORDER BY rowid`, contactID)
}

func (s *Store) listInvoices(ctx context.Context, query string, args ...any) ([]model.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("listing invoices", err)
	}
	defer rows.Close()

	var out []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, persistErr("scanning invoice", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing invoices", err)
	}

	for i := range out {
		items, err := s.lineItems(ctx, "invoice_items", "invoice_id", out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *Store) ReplaceInvoice(ctx context.Context, inv model.Invoice) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE invoices SET number = ?, contact_id = ?, issue_date = ?, due_date = ?,
			 status = ?, tax_rate = ?, subtotal = ?, tax = ?, total = ? WHERE id = ?`,
			inv.Number, inv.ContactID, fmtDate(inv.IssueDate), fmtDate(inv.DueDate),
			string(inv.Status), inv.TaxRatePercent.String(),
			inv.Subtotal.String(), inv.Tax.String(), inv.Total.String(), inv.ID)
		if err != nil {
			return persistErr("updating invoice", err)
		}
		if err := requireRow(res, "invoice", inv.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM invoice_items WHERE invoice_id = ?`, inv.ID); err != nil {
			return persistErr("clearing invoice items", err)
		}
		return insertLineItems(ctx, tx, "invoice_items", "invoice_id", inv.ID, inv.Items)
	})
	if err != nil {
		return err
	}
	s.publish(events.KindUpdated, "invoice", inv.ID)
	return nil
}

func (s *Store) SetInvoiceStatus(ctx context.Context, id string, status model.InvoiceStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return persistErr("updating invoice status", err)
	}
	if err := requireRow(res, "invoice", id); err != nil {
		return err
	}
	s.publish(events.KindUpdated, "invoice", id)
	return nil
}

func (s *Store) RecordInvoicePayment(ctx context.Context, invoiceID string, tx model.Transaction) (model.Transaction, error) {
	var posted []model.Transaction
	err := s.withTx(ctx, func(dbTx *sql.Tx) error {
		var current string
		err := dbTx.QueryRowContext(ctx,
			`SELECT status FROM invoices WHERE id = ?`, invoiceID).Scan(&current)
		if err != nil {
			return notFoundOr("reading invoice status", "invoice", invoiceID, err)
		}
		if model.InvoiceStatus(current) == model.InvoicePaid {
			return fmt.Errorf("invoice %s already paid: %w", invoiceID, model.ErrInvalidStateTransition)
		}

		if _, err := dbTx.ExecContext(ctx,
			`UPDATE invoices SET status = ? WHERE id = ?`,
			string(model.InvoicePaid), invoiceID); err != nil {
			return persistErr("updating invoice status", err)
		}

		posted, err = postInTx(ctx, dbTx, []model.Transaction{tx})
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.publish(events.KindUpdated, "invoice", invoiceID)
	s.publish(events.KindPosted, "transaction", posted[0].ID)
	return posted[0], nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return persistErr("deleting invoice", err)
	}
	if err := requireRow(res, "invoice", id); err != nil {
		return err
	}
	s.publish(events.KindDeleted, "invoice", id)
	return nil
}

func scanInvoice(r rowScanner) (model.Invoice, error) {
	var inv model.Invoice
	var issue, due, status, rate, subtotal, tax, total string
	if err := r.Scan(&inv.ID, &inv.Number, &inv.ContactID, &issue, &due, &status, &rate, &subtotal, &tax, &total); err != nil {
		return model.Invoice{}, err
	}
	inv.Status = model.InvoiceStatus(status)

	var err error
	if inv.IssueDate, err = parseDate("scanning invoice issue date", issue); err != nil {
		return model.Invoice{}, err
	}
	if inv.DueDate, err = parseDate("scanning invoice due date", due); err != nil {
		return model.Invoice{}, err
	}
	if inv.TaxRatePercent, err = parseDec("scanning invoice tax rate", rate); err != nil {
		return model.Invoice{}, err
	}
	if inv.Subtotal, err = parseDec("scanning invoice subtotal", subtotal); err != nil {
		return model.Invoice{}, err
	}
	if inv.Tax, err = parseDec("scanning invoice tax", tax); err != nil {
		return model.Invoice{}, err
	}
	if inv.Total, err = parseDec("scanning invoice total", total); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// --- quotes ---

func (s *Store) CreateQuote(ctx context.Context, q model.Quote) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quotes (id, number, contact_id, issue_date, expiry_date, status, tax_rate, subtotal, tax, total)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, q.Number, q.ContactID, fmtDate(q.IssueDate), fmtDate(q.ExpiryDate),
			string(q.Status), q.TaxRatePercent.String(),
			q.Subtotal.String(), q.Tax.String(), q.Total.String()); err != nil {
			return persistErr("inserting quote", err)
		}
		return insertLineItems(ctx, tx, "quote_items", "quote_id", q.ID, q.Items)
	})
	if err != nil {
		return err
	}
	s.publish(events.KindCreated, "quote", q.ID)
	return nil
}

func (s *Store) Quote(ctx context.Context, id string) (model.Quote, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, number, contact_id, issue_date, expiry_date, status, tax_rate, subtotal, tax, total
		 FROM quotes WHERE id = ?`, id)
	q, err := scanQuote(row)
	if err != nil {
		return model.Quote{}, notFoundOr("scanning quote", "quote", id, err)
	}
	items, err := s.lineItems(ctx, "quote_items", "quote_id", id)
	if err != nil {
		return model.Quote{}, err
	}
	q.Items = items
	return q, nil
}

func (s *Store) Quotes(ctx context.Context) ([]model.Quote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, number, contact_id, issue_date, expiry_date, status, tax_rate, subtotal, tax, total
		 FROM quotes ORDER BY rowid`)
	if err != nil {
		return nil, persistErr("listing quotes", err)
	}
	defer rows.Close()

	var out []model.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, persistErr("scanning quote", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing quotes", err)
	}

	for i := range out {
		items, err := s.lineItems(ctx, "quote_items", "quote_id", out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *Store) ReplaceQuote(ctx context.Context, q model.Quote) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE quotes SET number = ?, contact_id = ?, issue_date = ?, expiry_date = ?,
			 status = ?, tax_rate = ?, subtotal = ?, tax = ?, total = ? WHERE id = ?`,
			q.Number, q.ContactID, fmtDate(q.IssueDate), fmtDate(q.ExpiryDate),
			string(q.Status), q.TaxRatePercent.String(),
			q.Subtotal.String(), q.Tax.String(), q.Total.String(), q.ID)
		if err != nil {
			return persistErr("updating quote", err)
		}
		if err := requireRow(res, "quote", q.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM quote_items WHERE quote_id = ?`, q.ID); err != nil {
			return persistErr("clearing quote items", err)
		}
		return insertLineItems(ctx, tx, "quote_items", "quote_id", q.ID, q.Items)
	})
	if err != nil {
		return err
	}
	s.publish(events.KindUpdated, "quote", q.ID)
	return nil
}

func (s *Store) SetQuoteStatus(ctx context.Context, id string, status model.QuoteStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quotes SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return persistErr("updating quote status", err)
	}
	if err := requireRow(res, "quote", id); err != nil {
		return err
	}
	s.publish(events.KindUpdated, "quote", id)
	return nil
}

func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return persistErr("deleting quote", err)
	}
	if err := requireRow(res, "quote", id); err != nil {
		return err
	}
	s.publish(events.KindDeleted, "quote", id)
	return nil
}

func scanQuote(r rowScanner) (model.Quote, error) {
	var q model.Quote
	var issue, expiry, status, rate, subtotal, tax, total string
	if err := r.Scan(&q.ID, &q.Number, &q.ContactID, &issue, &expiry, &status, &rate, &subtotal, &tax, &total); err != nil {
		return model.Quote{}, err
	}
	q.Status = model.QuoteStatus(status)

	var err error
	if q.IssueDate, err = parseDate("scanning quote issue date", issue); err != nil {
		return model.Quote{}, err
	}
	if q.ExpiryDate, err = parseDate("scanning quote expiry date", expiry); err != nil {
		return model.Quote{}, err
	}
	if q.TaxRatePercent, err = parseDec("scanning quote tax rate", rate); err != nil {
		return model.Quote{}, err
	}
	if q.Subtotal, err = parseDec("scanning quote subtotal", subtotal); err != nil {
		return model.Quote{}, err
	}
	if q.Tax, err = parseDec("scanning quote tax", tax); err != nil {
		return model.Quote{}, err
	}
	if q.Total, err = parseDec("scanning quote total", total); err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

// --- purchases ---

func (s *Store) CreatePurchase(ctx context.Context, p model.Purchase) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO purchases (id, number, contact_id, date, subtotal, vat, total)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Number, p.ContactID, fmtDate(p.Date),
			p.Subtotal.String(), p.VAT.String(), p.Total.String()); err != nil {
			return persistErr("inserting purchase", err)
		}
		return insertPurchaseItems(ctx, tx, p.ID, p.Items)
	})
	if err != nil {
		return err
	}
	s.publish(events.KindCreated, "purchase", p.ID)
	return nil
}

func (s *Store) Purchase(ctx context.Context, id string) (model.Purchase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, number, contact_id, date, subtotal, vat, total FROM purchases WHERE id = ?`, id)
	p, err := scanPurchase(row)
	if err != nil {
		return model.Purchase{}, notFoundOr("scanning purchase", "purchase", id, err)
	}
	items, err := s.purchaseItems(ctx, id)
	if err != nil {
		return model.Purchase{}, err
	}
	p.Items = items
	return p, nil
}

func (s *Store) Purchases(ctx context.Context) ([]model.Purchase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, number, contact_id, date, subtotal, vat, total FROM purchases ORDER BY rowid`)
	if err != nil {
		return nil, persistErr("listing purchases", err)
	}
	defer rows.Close()

	var out []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, persistErr("scanning purchase", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing purchases", err)
	}

	for i := range out {
		items, err := s.purchaseItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *Store) ReplacePurchase(ctx context.Context, p model.Purchase) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE purchases SET number = ?, contact_id = ?, date = ?, subtotal = ?, vat = ?, total = ? WHERE id = ?`,
			p.Number, p.ContactID, fmtDate(p.Date),
			p.Subtotal.String(), p.VAT.String(), p.Total.String(), p.ID)
		if err != nil {
			return persistErr("updating purchase", err)
		}
		if err := requireRow(res, "purchase", p.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM purchase_items WHERE purchase_id = ?`, p.ID); err != nil {
			return persistErr("clearing purchase items", err)
		}
		return insertPurchaseItems(ctx, tx, p.ID, p.Items)
	})
	if err != nil {
		return err
	}
	s.publish(events.KindUpdated, "purchase", p.ID)
	return nil
}

func (s *Store) DeletePurchase(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM purchases WHERE id = ?`, id)
	if err != nil {
		return persistErr("deleting purchase", err)
	}
	if err := requireRow(res, "purchase", id); err != nil {
		return err
	}
	s.publish(events.KindDeleted, "purchase", id)
	return nil
}

func scanPurchase(r rowScanner) (model.Purchase, error) {
	var p model.Purchase
	var date, subtotal, vat, total string
	if err := r.Scan(&p.ID, &p.Number, &p.ContactID, &date, &subtotal, &vat, &total); err != nil {
		return model.Purchase{}, err
	}

	var err error
	if p.Date, err = parseDate("scanning purchase date", date); err != nil {
		return model.Purchase{}, err
	}
	if p.Subtotal, err = parseDec("scanning purchase subtotal", subtotal); err != nil {
		return model.Purchase{}, err
	}
	if p.VAT, err = parseDec("scanning purchase vat", vat); err != nil {
		return model.Purchase{}, err
	}
	if p.Total, err = parseDec("scanning purchase total", total); err != nil {
		return model.Purchase{}, err
	}
	return p, nil
}

// --- line item helpers ---

func insertLineItems(ctx context.Context, tx *sql.Tx, table, fk, parentID string, items []model.LineItem) error {
	for i, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (`+fk+`, position, description, quantity, unit_price, total)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			parentID, i, item.Description, item.Quantity.String(), item.UnitPrice.String(), item.Total.String()); err != nil {
			return persistErr("inserting line item", err)
		}
	}
	return nil
}

func (s *Store) lineItems(ctx context.Context, table, fk, parentID string) ([]model.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT description, quantity, unit_price, total FROM `+table+
			` WHERE `+fk+` = ? ORDER BY position`, parentID)
	if err != nil {
		return nil, persistErr("listing line items", err)
	}
	defer rows.Close()

	var out []model.LineItem
	for rows.Next() {
		var item model.LineItem
		var qty, price, total string
		if err := rows.Scan(&item.Description, &qty, &price, &total); err != nil {
			return nil, persistErr("scanning line item", err)
		}
		if item.Quantity, err = parseDec("scanning line item quantity", qty); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = parseDec("scanning line item unit price", price); err != nil {
			return nil, err
		}
		if item.Total, err = parseDec("scanning line item total", total); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing line items", err)
	}
	return out, nil
}

func insertPurchaseItems(ctx context.Context, tx *sql.Tx, purchaseID string, items []model.PurchaseLineItem) error {
	for i, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO purchase_items (purchase_id, position, description, amount, vat)
			 VALUES (?, ?, ?, ?, ?)`,
			purchaseID, i, item.Description, item.Amount.String(), item.VAT.String()); err != nil {
			return persistErr("inserting purchase item", err)
		}
	}
	return nil
}

func (s *Store) purchaseItems(ctx context.Context, purchaseID string) ([]model.PurchaseLineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT description, amount, vat FROM purchase_items WHERE purchase_id = ? ORDER BY position`, purchaseID)
	if err != nil {
		return nil, persistErr("listing purchase items", err)
	}
	defer rows.Close()

	var out []model.PurchaseLineItem
	for rows.Next() {
		var item model.PurchaseLineItem
		var amount, vat string
		if err := rows.Scan(&item.Description, &amount, &vat); err != nil {
			return nil, persistErr("scanning purchase item", err)
		}
		if item.Amount, err = parseDec("scanning purchase item amount", amount); err != nil {
			return nil, err
		}
		if item.VAT, err = parseDec("scanning purchase item vat", vat); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing purchase items", err)
	}
	return out, nil
}

// requireRow converts a zero-rows-affected result into a not-found error.
func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("checking rows affected", err)
	}
	if n == 0 {
		return notFoundOr("checking rows affected", entity, id, sql.ErrNoRows)
	}
	return nil
}
