package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/YoshikiFujii/FLcasher/internal/model"
)

type ProductRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	query := `SELECT id, name, price, image_uri, is_available FROM products ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ImageURI, &p.IsAvailable); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT id, name, price, image_uri, is_available FROM products WHERE id=?`
	var p model.Product
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.ImageURI, &p.IsAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (int64, error) {
	query := `INSERT INTO products (name, price, image_uri, is_available) VALUES (?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, query, p.Name, p.Price, p.ImageURI, p.IsAvailable)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	query := `UPDATE products SET name=?, price=?, image_uri=?, is_available=? WHERE id=?`
	res, err := r.DB.ExecContext(ctx, query, p.Name, p.Price, p.ImageURI, p.IsAvailable, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
