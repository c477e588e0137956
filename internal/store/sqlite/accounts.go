package sqlite

import (
	"context"
	"database/sql"

	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

func (s *Store) CreateAccount(ctx context.Context, a model.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, institution, number_mask, kind, balance)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Institution, a.NumberMask, string(a.Kind), a.Balance.String())
	if err != nil {
		return persistErr("inserting account", err)
	}
	s.publish(events.KindCreated, "account", a.ID)
	return nil
}

func (s *Store) Account(ctx context.Context, id string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, institution, number_mask, kind, balance
		 FROM accounts WHERE id = ?`, id)
	return scanAccount(row, id)
}

func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, institution, number_mask, kind, balance
		 FROM accounts ORDER BY rowid`)
	if err != nil {
		return nil, persistErr("listing accounts", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccountRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing accounts", err)
	}
	return out, nil
}

func (s *Store) UpdateAccount(ctx context.Context, id string, p store.UpdateAccountParams) (model.Account, error) {
	var updated model.Account
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, name, institution, number_mask, kind, balance
			 FROM accounts WHERE id = ?`, id)
		a, err := scanAccount(row, id)
		if err != nil {
			return err
		}

		if p.Name != nil {
			a.Name = *p.Name
		}
		if p.Institution != nil {
			a.Institution = *p.Institution
		}
		if p.NumberMask != nil {
			a.NumberMask = *p.NumberMask
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET name = ?, institution = ?, number_mask = ? WHERE id = ?`,
			a.Name, a.Institution, a.NumberMask, id); err != nil {
			return persistErr("updating account", err)
		}
		updated = a
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	s.publish(events.KindUpdated, "account", id)
	return updated, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return persistErr("deleting account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("deleting account", err)
	}
	if n == 0 {
		return notFoundOr("deleting account", "account", id, sql.ErrNoRows)
	}
	s.publish(events.KindDeleted, "account", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row *sql.Row, id string) (model.Account, error) {
	a, err := scanAccountFrom(row)
	if err != nil {
		return model.Account{}, notFoundOr("scanning account", "account", id, err)
	}
	return a, nil
}

func scanAccountRows(rows *sql.Rows) (model.Account, error) {
	a, err := scanAccountFrom(rows)
	if err != nil {
		return model.Account{}, persistErr("scanning account", err)
	}
	return a, nil
}

func scanAccountFrom(r rowScanner) (model.Account, error) {
	var a model.Account
	var kind, balance string
	if err := r.Scan(&a.ID, &a.Name, &a.Institution, &a.NumberMask, &kind, &balance); err != nil {
		return model.Account{}, err
	}
	a.Kind = model.AccountKind(kind)
	b, err := parseDec("scanning account balance", balance)
	if err != nil {
		return model.Account{}, err
	}
	a.Balance = b
	return a, nil
}
