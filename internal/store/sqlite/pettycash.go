package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/model"
)

func (s *Store) CreatePettyCashEntry(ctx context.Context, e model.PettyCashEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO petty_cash_entries (id, date, description, kind, amount, status, funding_account_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, fmtDate(e.Date), e.Description, string(e.Kind), e.Amount.String(), string(e.Status), e.FundingAccountID)
	if err != nil {
		return persistErr("inserting petty cash entry", err)
	}
	s.publish(events.KindCreated, "petty_cash_entry", e.ID)
	return nil
}

func (s *Store) PettyCashEntry(ctx context.Context, id string) (model.PettyCashEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, date, description, kind, amount, status, funding_account_id
		 FROM petty_cash_entries WHERE id = ?`, id)
	e, err := scanPettyCashEntry(row)
	if err != nil {
		return model.PettyCashEntry{}, notFoundOr("scanning petty cash entry", "petty cash entry", id, err)
	}
	return e, nil
}

func (s *Store) PettyCashEntries(ctx context.Context) ([]model.PettyCashEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, description, kind, amount, status, funding_account_id
		 FROM petty_cash_entries ORDER BY date DESC, rowid DESC`)
	if err != nil {
		return nil, persistErr("listing petty cash entries", err)
	}
	defer rows.Close()

	var out []model.PettyCashEntry
	for rows.Next() {
		e, err := scanPettyCashEntry(rows)
		if err != nil {
			return nil, persistErr("scanning petty cash entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing petty cash entries", err)
	}
	return out, nil
}

func (s *Store) FinalizePettyCashEntry(ctx context.Context, id string, status model.PettyCashStatus, txs []model.Transaction) ([]model.Transaction, error) {
	var posted []model.Transaction
	err := s.withTx(ctx, func(dbTx *sql.Tx) error {
		var current string
		err := dbTx.QueryRowContext(ctx,
			`SELECT status FROM petty_cash_entries WHERE id = ?`, id).Scan(&current)
		if err != nil {
			return notFoundOr("reading petty cash status", "petty cash entry", id, err)
		}
		if model.PettyCashStatus(current) != model.PettyCashPending {
			return fmt.Errorf("petty cash entry %s is %s: %w", id, current, model.ErrInvalidStateTransition)
		}

		if _, err := dbTx.ExecContext(ctx,
			`UPDATE petty_cash_entries SET status = ? WHERE id = ?`,
			string(status), id); err != nil {
			return persistErr("updating petty cash status", err)
		}

		posted, err = postInTx(ctx, dbTx, txs)
		return err
	})
	if err != nil {
		return nil, err
	}

	kind := events.KindApproved
	if status == model.PettyCashRejected {
		kind = events.KindRejected
	}
	s.publish(kind, "petty_cash_entry", id)
	for _, tx := range posted {
		s.publish(events.KindPosted, "transaction", tx.ID)
	}
	return posted, nil
}

func scanPettyCashEntry(r rowScanner) (model.PettyCashEntry, error) {
	var e model.PettyCashEntry
	var date, kind, amount, status string
	if err := r.Scan(&e.ID, &date, &e.Description, &kind, &amount, &status, &e.FundingAccountID); err != nil {
		return model.PettyCashEntry{}, err
	}
	d, err := parseDate("scanning petty cash date", date)
	if err != nil {
		return model.PettyCashEntry{}, err
	}
	e.Date = d
	amt, err := parseDec("scanning petty cash amount", amount)
	if err != nil {
		return model.PettyCashEntry{}, err
	}
	e.Amount = amt
	e.Kind = model.PettyCashKind(kind)
	e.Status = model.PettyCashStatus(status)
	return e, nil
}
