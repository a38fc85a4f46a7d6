package repository

import (
	"context"
	"database/sql"

	"github.com/gymadmin/backoffice/internal/model"
)

// StockRepo persists merchandise inventory.
type StockRepo struct{ DB *sql.DB }

func NewStockRepo(db *sql.DB) *StockRepo { return &StockRepo{DB: db} }

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	var img sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.SalePrice, &p.CurrentStock, &p.InitialStock, &img)
	if err != nil {
		return model.Product{}, err
	}
	p.ImageURL = nullStr(img)
	return p, nil
}

// List returns every product.
func (r *StockRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, nombre_producto, precio_venta, stock_actual, stock_inicial, imagen_url FROM stock ORDER BY nombre_producto")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches one product.
func (r *StockRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT id, nombre_producto, precio_venta, stock_actual, stock_inicial, imagen_url FROM stock WHERE id=? LIMIT 1", id)
	return scanProduct(row)
}

// Create inserts a product; the initial stock defaults to the current one.
func (r *StockRepo) Create(ctx context.Context, p *model.Product) (uint64, error) {
	if p.InitialStock == 0 {
		p.InitialStock = p.CurrentStock
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO stock (nombre_producto, precio_venta, stock_actual, stock_inicial, imagen_url) VALUES (?,?,?,?,?)",
		p.Name, p.SalePrice, p.CurrentStock, p.InitialStock, p.ImageURL)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites a product.
func (r *StockRepo) Update(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE stock SET nombre_producto=?, precio_venta=?, stock_actual=?, stock_inicial=?, imagen_url=? WHERE id=?",
		p.Name, p.SalePrice, p.CurrentStock, p.InitialStock, p.ImageURL, p.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a product.
func (r *StockRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM stock WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
