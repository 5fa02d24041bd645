package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shoplytics/internal/domain"
)

// SalesRepo serves the read-side aggregates used by reporting.
type SalesRepo struct{ db *sqlx.DB }

func NewSalesRepo(db *sqlx.DB) *SalesRepo { return &SalesRepo{db: db} }

type salesSummaryRow struct {
	ProductID         int64  `db:"product_id"`
	ProductName       string `db:"product_name"`
	SKU               string `db:"sku"`
	Category          string `db:"category"`
	TotalQuantitySold int    `db:"total_quantity_sold"`
	TotalRevenueCents int64  `db:"total_revenue_cents"`
	UnitPriceCentsSum int64  `db:"unit_price_cents_sum"`
	OrderLines        int64  `db:"order_lines"`
	NumberOfOrders    int    `db:"number_of_orders"`
}

// Summary returns one row per product that has sold at least once, in product id order.
func (r *SalesRepo) Summary() ([]domain.SalesData, error) {
	var rows []salesSummaryRow
	err := r.db.Select(&rows, `
		SELECT product_id, product_name, sku, category, total_quantity_sold,
		       total_revenue_cents, unit_price_cents_sum, order_lines, number_of_orders
		FROM sales_summary
		ORDER BY product_id
	`)
	if err != nil {
		return nil, &domain.StorageError{Op: "read sales summary", Err: err}
	}
	out := make([]domain.SalesData, 0, len(rows))
	for _, row := range rows {
		// mean unit price over order lines, kept exact until reporting rounds it
		var avg decimal.Decimal
		if row.OrderLines > 0 {
			avg = fromCents(row.UnitPriceCentsSum).Div(decimal.NewFromInt(row.OrderLines))
		}
		out = append(out, domain.SalesData{
			ProductName:       row.ProductName,
			SKU:               row.SKU,
			Category:          row.Category,
			TotalQuantitySold: row.TotalQuantitySold,
			TotalRevenue:      fromCents(row.TotalRevenueCents),
			AvgSellingPrice:   avg,
			NumberOfOrders:    row.NumberOfOrders,
		})
	}
	return out, nil
}

type dailySalesRow struct {
	SaleDate          string `db:"sale_date"`
	TotalOrders       int    `db:"total_orders"`
	TotalRevenueCents int64  `db:"total_revenue_cents"`
	TotalItemsSold    int    `db:"total_items_sold"`
}

// DailySince aggregates orders dated at or after cutoff by calendar day (UTC),
// newest day first. Orders without items are not counted.
func (r *SalesRepo) DailySince(cutoff time.Time) ([]domain.DailySales, error) {
	var rows []dailySalesRow
	err := r.db.Select(&rows, `
		SELECT DATE(o.order_date)        AS sale_date,
		       COUNT(*)                  AS total_orders,
		       SUM(o.total_amount_cents) AS total_revenue_cents,
		       SUM(i.qty)                AS total_items_sold
		FROM orders o
		JOIN (
		  SELECT order_id, SUM(quantity) AS qty
		  FROM order_items
		  GROUP BY order_id
		) i ON i.order_id = o.id
		WHERE o.order_date >= ?
		GROUP BY DATE(o.order_date)
		ORDER BY sale_date DESC
	`, formatTime(cutoff))
	if err != nil {
		return nil, &domain.StorageError{Op: "read daily sales", Err: err}
	}
	out := make([]domain.DailySales, 0, len(rows))
	for _, row := range rows {
		day, err := time.Parse(time.DateOnly, row.SaleDate)
		if err != nil {
			return nil, &domain.StorageError{Op: "read daily sales", Err: err}
		}
		revenue := fromCents(row.TotalRevenueCents)
		d := domain.DailySales{
			Date:           day,
			TotalOrders:    row.TotalOrders,
			TotalRevenue:   revenue,
			TotalItemsSold: row.TotalItemsSold,
		}
		if row.TotalOrders > 0 {
			d.AvgOrderValue = revenue.Div(decimal.NewFromInt(int64(row.TotalOrders)))
		}
		out = append(out, d)
	}
	return out, nil
}
