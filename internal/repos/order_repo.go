package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"shoplytics/internal/domain"
)

type OrderRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db, now: time.Now} }

type orderRow struct {
	ID                int64  `db:"id"`
	CustomerID        int64  `db:"customer_id"`
	OrderDate         string `db:"order_date"`
	Status            string `db:"status"`
	TotalAmountCents  int64  `db:"total_amount_cents"`
	ShippingCostCents int64  `db:"shipping_cost_cents"`
	TaxAmountCents    int64  `db:"tax_amount_cents"`
}

type orderItemRow struct {
	ID              int64 `db:"id"`
	OrderID         int64 `db:"order_id"`
	ProductID       int64 `db:"product_id"`
	Quantity        int   `db:"quantity"`
	UnitPriceCents  int64 `db:"unit_price_cents"`
	TotalPriceCents int64 `db:"total_price_cents"`
}

func (r *OrderRepo) encode(o domain.Order, items []domain.OrderItem) (orderRow, []orderItemRow, error) {
	row := orderRow{CustomerID: o.CustomerID, Status: o.Status}
	if row.Status == "" {
		row.Status = domain.DefaultOrderStatus
	}
	date := o.OrderDate
	if date.IsZero() {
		date = r.now()
	}
	row.OrderDate = formatTime(date)

	var err error
	if row.TotalAmountCents, err = toCents("total_amount", o.TotalAmount); err != nil {
		return orderRow{}, nil, err
	}
	if row.ShippingCostCents, err = toCents("shipping_cost", o.ShippingCost); err != nil {
		return orderRow{}, nil, err
	}
	if row.TaxAmountCents, err = toCents("tax_amount", o.TaxAmount); err != nil {
		return orderRow{}, nil, err
	}

	lines := make([]orderItemRow, 0, len(items))
	for _, it := range items {
		line := orderItemRow{ProductID: it.ProductID, Quantity: it.Quantity}
		if line.UnitPriceCents, err = toCents("unit_price", it.UnitPrice); err != nil {
			return orderRow{}, nil, err
		}
		if line.TotalPriceCents, err = toCents("total_price", it.TotalPrice); err != nil {
			return orderRow{}, nil, err
		}
		lines = append(lines, line)
	}
	return row, lines, nil
}

// Create inserts an order and all of its items in one transaction and returns
// the new order id. Nothing is kept if any statement fails.
func (r *OrderRepo) Create(o domain.Order, items []domain.OrderItem) (int64, error) {
	row, lines, err := r.encode(o, items)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return 0, &domain.StorageError{Op: "begin order", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
	  INSERT INTO orders
	    (customer_id, order_date, status, total_amount_cents, shipping_cost_cents, tax_amount_cents)
	  VALUES
	    (?,           ?,          ?,      ?,                  ?,                   ?)
	`, row.CustomerID, row.OrderDate, row.Status, row.TotalAmountCents, row.ShippingCostCents, row.TaxAmountCents)
	if err != nil {
		return 0, &domain.StorageError{Op: "insert order", Err: err}
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, &domain.StorageError{Op: "insert order", Err: err}
	}

	for i, line := range lines {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, quantity, unit_price_cents, total_price_cents)
		  VALUES (?, ?, ?, ?, ?)
		`, orderID, line.ProductID, line.Quantity, line.UnitPriceCents, line.TotalPriceCents); err != nil {
			return 0, &domain.StorageError{Op: fmt.Sprintf("insert order item %d (product %d)", i+1, line.ProductID), Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &domain.StorageError{Op: "commit order", Err: err}
	}
	return orderID, nil
}

// Get returns an order with its items in insertion order.
func (r *OrderRepo) Get(id int64) (domain.Order, []domain.OrderItem, error) {
	var row orderRow
	if err := r.db.Get(&row, `
		SELECT id, customer_id, order_date, status, total_amount_cents, shipping_cost_cents, tax_amount_cents
		FROM orders
		WHERE id = ?
	`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, nil, &domain.NotFoundError{Entity: "order", Key: strconv.FormatInt(id, 10)}
		}
		return domain.Order{}, nil, &domain.StorageError{Op: "get order", Err: err}
	}
	date, err := parseTime(row.OrderDate)
	if err != nil {
		return domain.Order{}, nil, &domain.StorageError{Op: "get order", Err: err}
	}
	o := domain.Order{
		ID:           row.ID,
		CustomerID:   row.CustomerID,
		OrderDate:    date,
		Status:       row.Status,
		TotalAmount:  fromCents(row.TotalAmountCents),
		ShippingCost: fromCents(row.ShippingCostCents),
		TaxAmount:    fromCents(row.TaxAmountCents),
	}

	var lines []orderItemRow
	if err := r.db.Select(&lines, `
		SELECT id, order_id, product_id, quantity, unit_price_cents, total_price_cents
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`, id); err != nil {
		return domain.Order{}, nil, &domain.StorageError{Op: "get order items", Err: err}
	}
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ID:         l.ID,
			OrderID:    l.OrderID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  fromCents(l.UnitPriceCents),
			TotalPrice: fromCents(l.TotalPriceCents),
		})
	}
	return o, items, nil
}

func (r *OrderRepo) Count() (int, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		return 0, &domain.StorageError{Op: "count orders", Err: err}
	}
	return n, nil
}

func (r *OrderRepo) CountItems() (int, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM order_items`); err != nil {
		return 0, &domain.StorageError{Op: "count order items", Err: err}
	}
	return n, nil
}
