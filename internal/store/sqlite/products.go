package sqlite

import (
	"context"
	"database/sql"

	"github.com/tallybooks/tally/internal/events"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

func (s *Store) CreateProduct(ctx context.Context, p model.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, unit_price, kind)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.UnitPrice.String(), string(p.Kind))
	if err != nil {
		return persistErr("inserting product", err)
	}
	s.publish(events.KindCreated, "product", p.ID)
	return nil
}

func (s *Store) Product(ctx context.Context, id string) (model.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, unit_price, kind FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		return model.Product{}, notFoundOr("scanning product", "product", id, err)
	}
	return p, nil
}

func (s *Store) Products(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, unit_price, kind FROM products ORDER BY rowid`)
	if err != nil {
		return nil, persistErr("listing products", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, persistErr("scanning product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("listing products", err)
	}
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, p store.UpdateProductParams) (model.Product, error) {
	var updated model.Product
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT id, name, description, unit_price, kind FROM products WHERE id = ?`, id)
		prod, err := scanProduct(row)
		if err != nil {
			return notFoundOr("scanning product", "product", id, err)
		}

		if p.Name != nil {
			prod.Name = *p.Name
		}
		if p.Description != nil {
			prod.Description = *p.Description
		}
		if p.UnitPrice != nil {
			prod.UnitPrice = *p.UnitPrice
		}
		if p.Kind != nil {
			prod.Kind = *p.Kind
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET name = ?, description = ?, unit_price = ?, kind = ? WHERE id = ?`,
			prod.Name, prod.Description, prod.UnitPrice.String(), string(prod.Kind), id); err != nil {
			return persistErr("updating product", err)
		}
		updated = prod
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	s.publish(events.KindUpdated, "product", id)
	return updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return persistErr("deleting product", err)
	}
	if err := requireRow(res, "product", id); err != nil {
		return err
	}
	s.publish(events.KindDeleted, "product", id)
	return nil
}

func scanProduct(r rowScanner) (model.Product, error) {
	var p model.Product
	var price, kind string
	if err := r.Scan(&p.ID, &p.Name, &p.Description, &price, &kind); err != nil {
		return model.Product{}, err
	}
	d, err := parseDec("scanning product price", price)
	if err != nil {
		return model.Product{}, err
	}
	p.UnitPrice = d
	p.Kind = model.ProductKind(kind)
	return p, nil
}
