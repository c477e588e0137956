package sqlite

import (
	"context"
	"database/sql"

	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

func (s *Store) CreateContact(ctx context.Context, c model.Contact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, phone, address, type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, string(c.Type))
	if err != nil {
		return persistErr("inserting contact", err)
	}
	s.publish(events.KindCreated, "contact", c.ID)
	return nil
}

func (s *Store) Contact(ctx context.Context, id string) (model.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, address, type FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err != nil {
		return model.Contact{}, notFoundOr("scanning contact", "contact", id, err)
	}
	return c, nil
}

func (s *Store) Contacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, address, type FROM contacts ORDER BY rowid`)
	if err != nil {
		return nil, persistErr("listing contacts", err)
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, persistErr("scanning contact", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing contacts", err)
	}
	return out, nil
}

func (s *Store) UpdateContact(ctx context.Context, id string, p store.UpdateContactParams) (model.Contact, error) {
	var updated model.Contact
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, name, email, phone, address, type FROM contacts WHERE id = ?`, id)
		c, err := scanContact(row)
		if err != nil {
			return notFoundOr("scanning contact", "contact", id, err)
		}

		if p.Name != nil {
			c.Name = *p.Name
		}
		if p.Email != nil {
			c.Email = *p.Email
		}
		if p.Phone != nil {
			c.Phone = *p.Phone
		}
		if p.Address != nil {
			c.Address = *p.Address
		}
		if p.Type != nil {
			c.Type = *p.Type
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE contacts SET name = ?, email = ?, phone = ?, address = ?, type = ? WHERE id = ?`,
			c.Name, c.Email, c.Phone, c.Address, string(c.Type), id); err != nil {
			return persistErr("updating contact", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return model.Contact{}, err
	}
	s.publish(events.KindUpdated, "contact", id)
	return updated, nil
}

func (s *Store) DeleteContact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return persistErr("deleting contact", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persistErr("deleting contact", err)
	}
	if n == 0 {
		return notFoundOr("deleting contact", "contact", id, sql.ErrNoRows)
	}
	s.publish(events.KindDeleted, "contact", id)
	return nil
}

func scanContact(r rowScanner) (model.Contact, error) {
	var c model.Contact
	var typ string
	if err := r.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &typ); err != nil {
		return model.Contact{}, err
	}
	c.Type = model.ContactType(typ)
	return c, nil
}
