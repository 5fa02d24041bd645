package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ids are left zero on insert; the store assigns them.

type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

type Product struct {
	ID            int64
	Name          string
	SKU           string
	CategoryID    int64
	Price         decimal.Decimal
	Cost          decimal.NullDecimal
	Description   string
	StockQuantity int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Customer struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Phone     string
	CreatedAt time.Time
}

const DefaultOrderStatus = "pending"

type Order struct {
	ID           int64
	CustomerID   int64
	OrderDate    time.Time // zero means "now" at insert
	Status       string
	TotalAmount  decimal.Decimal
	ShippingCost decimal.Decimal
	TaxAmount    decimal.Decimal
}

type OrderItem struct {
	ID         int64
	OrderID    int64
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// ExpectedTotal is the sum of item totals plus shipping and tax.
func ExpectedTotal(o Order, items []OrderItem) decimal.Decimal {
	sum := o.ShippingCost.Add(o.TaxAmount)
	for _, it := range items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

// SalesData is one row of the per-product sales summary. Read only.
type SalesData struct {
	ProductName       string
	SKU               string
	Category          string
	TotalQuantitySold int
	TotalRevenue      decimal.Decimal
	AvgSellingPrice   decimal.Decimal
	NumberOfOrders    int
}

type DailySales struct {
	Date           time.Time
	TotalOrders    int
	TotalRevenue   decimal.Decimal
	AvgOrderValue  decimal.Decimal
	TotalItemsSold int
}

// Import run statuses.
const (
	ImportRunning   = "RUNNING"
	ImportCompleted = "COMPLETED"
	ImportFailed    = "FAILED"
)

type ImportRun struct {
	ID         string
	Source     string
	Checksum   string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}
