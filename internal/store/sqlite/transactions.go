package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/model"
)

func (s *Store) PostTransactions(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error) {
	var posted []model.Transaction
	err := s.withTx(ctx, func(dbTx *sql.Tx) error {
		var err error
		posted, err = postInTx(ctx, dbTx, txs)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, tx := range posted {
		s.publish(events.KindPosted, "transaction", tx.ID)
	}
	return posted, nil
}

// postInTx inserts transactions and applies each amount to its account's
// balance within the caller's database transaction. The balance read and
// write share the transaction, so concurrent postings to the same account
// serialize rather than losing updates.
func postInTx(ctx context.Context, dbTx *sql.Tx, txs []model.Transaction) ([]model.Transaction, error) {
	posted := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		var balanceStr string
		err := dbTx.QueryRowContext(ctx,
			`SELECT balance FROM accounts WHERE id = ?`, tx.AccountID).Scan(&balanceStr)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", tx.AccountID, model.ErrNotFound)
		}
		if err != nil {
			return nil, persistErr("reading account balance", err)
		}
		balance, err := parseDec("reading account balance", balanceStr)
		if err != nil {
			return nil, err
		}

		res, err := dbTx.ExecContext(ctx,
			`INSERT INTO transactions (id, account_id, date, description, amount, invoice_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			tx.ID, tx.AccountID, fmtDate(tx.Date), tx.Description, tx.Amount.String(), tx.InvoiceID)
		if err != nil {
			return nil, persistErr("inserting transaction", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return nil, persistErr("inserting transaction", err)
		}
		tx.Seq = seq

		newBalance := balance.Add(tx.Amount)
		if _, err := dbTx.ExecContext(ctx,
			`UPDATE accounts SET balance = ? WHERE id = ?`,
			newBalance.String(), tx.AccountID); err != nil {
			return nil, persistErr("updating account balance", err)
		}

		posted = append(posted, tx)
	}
	return posted, nil
}

func (s *Store) Transactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE id = ?`, accountID).Scan(&exists)
	if err != nil {
		return nil, notFoundOr("checking account", "account", accountID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, account_id, date, description, amount, invoice_id
		 FROM transactions WHERE account_id = ?
		 ORDER BY date DESC, seq DESC`, accountID)
	if err != nil {
		return nil, persistErr("listing transactions", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (s *Store) AllTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.seq, t.id, t.account_id, t.date, t.description, t.amount, t.invoice_id
		 FROM transactions t
		 JOIN accounts a ON a.id = t.account_id
		 ORDER BY a.rowid, t.seq`)
	if err != nil {
		return nil, persistErr("listing all transactions", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var out []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var date, amount string
		if err := rows.Scan(&tx.Seq, &tx.ID, &tx.AccountID, &date, &tx.Description, &amount, &tx.InvoiceID); err != nil {
			return nil, persistErr("scanning transaction", err)
		}
		d, err := parseDate("scanning transaction date", date)
		if err != nil {
			return nil, err
		}
		tx.Date = d
		amt, err := parseDec("scanning transaction amount", amount)
		if err != nil {
			return nil, err
		}
		tx.Amount = amt
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("scanning transactions", err)
	}
	return out, nil
}
