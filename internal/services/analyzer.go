package services

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"shoplytics/internal/domain"
)

// SalesSource is the read side the analyzer aggregates over.
type SalesSource interface {
	Summary() ([]domain.SalesData, error)
	DailySince(cutoff time.Time) ([]domain.DailySales, error)
}

type Analyzer struct {
	Sales SalesSource
	Clock Clock
}

func NewAnalyzer(sales SalesSource) *Analyzer {
	return &Analyzer{Sales: sales, Clock: realClock{}}
}

type TopProduct struct {
	ProductName  string
	SKU          string
	Category     string
	QuantitySold int
	Revenue      decimal.Decimal
	AvgPrice     decimal.Decimal
}

type CategoryRevenue struct {
	Category string
	Revenue  decimal.Decimal
}

// TopSellingProducts returns up to limit products by quantity sold, highest
// first. Ties keep summary order. limit <= 0 means 10.
func (a *Analyzer) TopSellingProducts(limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := a.Sales.Summary()
	if err != nil {
		return nil, err
	}
	rows = slices.Clone(rows)
	slices.SortStableFunc(rows, func(x, y domain.SalesData) int {
		return y.TotalQuantitySold - x.TotalQuantitySold
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]TopProduct, 0, len(rows))
	for _, r := range rows {
		out = append(out, TopProduct{
			ProductName:  r.ProductName,
			SKU:          r.SKU,
			Category:     r.Category,
			QuantitySold: r.TotalQuantitySold,
			Revenue:      r.TotalRevenue.Round(2),
			AvgPrice:     r.AvgSellingPrice.Round(2),
		})
	}
	return out, nil
}

// RevenueByCategory sums revenue per category label, largest total first.
// Equal totals keep the order in which the categories first appear.
func (a *Analyzer) RevenueByCategory() ([]CategoryRevenue, error) {
	rows, err := a.Sales.Summary()
	if err != nil {
		return nil, err
	}
	var out []CategoryRevenue
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryRevenue{Category: r.Category, Revenue: decimal.Zero})
		}
		out[i].Revenue = out[i].Revenue.Add(r.TotalRevenue)
	}
	slices.SortStableFunc(out, func(x, y CategoryRevenue) int {
		return y.Revenue.Cmp(x.Revenue)
	})
	return out, nil
}

// DailyCutoff is the start (UTC) of the calendar day days before now.
func DailyCutoff(now time.Time, days int) time.Time {
	d := now.UTC().AddDate(0, 0, -days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// DailySalesReport aggregates orders from the trailing days calendar days
// (default 7), newest day first.
func (a *Analyzer) DailySalesReport(days int) ([]domain.DailySales, error) {
	if days <= 0 {
		days = 7
	}
	rows, err := a.Sales.DailySince(DailyCutoff(a.Clock.Now(), days))
	if err != nil {
		return nil, err
	}
	out := make([]domain.DailySales, 0, len(rows))
	for _, r := range rows {
		r.TotalRevenue = r.TotalRevenue.Round(2)
		r.AvgOrderValue = r.AvgOrderValue.Round(2)
		out = append(out, r)
	}
	return out, nil
}
