package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"shoplytics/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID            int64         `db:"id"`
	Name          string        `db:"name"`
	SKU           string        `db:"sku"`
	CategoryID    int64         `db:"category_id"`
	PriceCents    int64         `db:"price_cents"`
	CostCents     sql.NullInt64 `db:"cost_cents"`
	Description   string        `db:"description"`
	StockQuantity int           `db:"stock_quantity"`
	IsActive      bool          `db:"is_active"`
	CreatedAt     string        `db:"created_at"`
	UpdatedAt     string        `db:"updated_at"`
}

func (row productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:            row.ID,
		Name:          row.Name,
		SKU:           row.SKU,
		CategoryID:    row.CategoryID,
		Price:         fromCents(row.PriceCents),
		Description:   row.Description,
		StockQuantity: row.StockQuantity,
		IsActive:      row.IsActive,
	}
	if row.CostCents.Valid {
		p.Cost.Decimal = fromCents(row.CostCents.Int64)
		p.Cost.Valid = true
	}
	var err error
	if p.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return domain.Product{}, err
	}
	if p.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Create inserts a product and returns its store-assigned id.
func (r *ProductRepo) Create(p domain.Product) (int64, error) {
	price, err := toCents("price", p.Price)
	if err != nil {
		return 0, err
	}
	cost, err := nullCents("cost", p.Cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.Exec(`
	  INSERT INTO products
	    (name, sku, category_id, price_cents, cost_cents, description, stock_quantity, is_active)
	  VALUES
	    (?,    ?,   ?,           ?,           ?,          ?,           ?,              ?)
	`, p.Name, p.SKU, p.CategoryID, price, cost, nullString(p.Description), p.StockQuantity, p.IsActive)
	if err != nil {
		return 0, &domain.StorageError{Op: "insert product " + p.SKU, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &domain.StorageError{Op: "insert product " + p.SKU, Err: err}
	}
	return id, nil
}

// ListActive returns every product flagged active, in id order.
func (r *ProductRepo) ListActive() ([]domain.Product, error) {
	var rows []productRow
	err := r.db.Select(&rows, `
	  SELECT
	    id, name, sku, category_id, price_cents, cost_cents,
	    COALESCE(description,'') AS description, stock_quantity, is_active,
	    created_at, updated_at
	  FROM products
	  WHERE is_active = 1
	  ORDER BY id
	`)
	if err != nil {
		return nil, &domain.StorageError{Op: "list active products", Err: err}
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, &domain.StorageError{Op: "list active products", Err: err}
		}
		out = append(out, p)
	}
	return out, nil
}
