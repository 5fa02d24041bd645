package services

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shoplytics/internal/domain"
	applog "shoplytics/internal/log"
	"shoplytics/internal/repos"
)

type sampleProduct struct {
	name, sku   string
	category    int // index into sampleCategories
	price, cost string
	stock       int
}

var sampleCategories = []domain.Category{
	{Name: "Electronics", Description: "Electronic devices and accessories"},
	{Name: "Clothing", Description: "Apparel and fashion items"},
	{Name: "Books", Description: "Books and educational materials"},
	{Name: "Home & Garden", Description: "Home improvement and garden supplies"},
	{Name: "Sports", Description: "Sports and outdoor equipment"},
}

var sampleProducts = []sampleProduct{
	{"Smartphone X1", "PHONE001", 0, "699.99", "400.00", 50},
	{"Wireless Headphones", "AUDIO001", 0, "159.99", "80.00", 100},
	{"Laptop Pro", "COMP001", 0, "1299.99", "800.00", 25},
	{"Cotton T-Shirt", "CLOTH001", 1, "24.99", "12.00", 200},
	{"Jeans Classic", "CLOTH002", 1, "59.99", "30.00", 150},
	{"Programming Guide", "BOOK001", 2, "39.99", "15.00", 75},
	{"Garden Hose", "GARDEN001", 3, "29.99", "15.00", 40},
	{"Tennis Racket", "SPORT001", 4, "89.99", "45.00", 30},
	{"Running Shoes", "SPORT002", 4, "119.99", "60.00", 80},
	{"Coffee Maker", "HOME001", 3, "79.99", "40.00", 60},
}

var sampleCustomers = []domain.Customer{
	{Email: "john.doe@email.com", FirstName: "John", LastName: "Doe", Phone: "555-0101"},
	{Email: "jane.smith@email.com", FirstName: "Jane", LastName: "Smith", Phone: "555-0102"},
	{Email: "bob.wilson@email.com", FirstName: "Bob", LastName: "Wilson", Phone: "555-0103"},
	{Email: "alice.brown@email.com", FirstName: "Alice", LastName: "Brown", Phone: "555-0104"},
	{Email: "charlie.davis@email.com", FirstName: "Charlie", LastName: "Davis", Phone: "555-0105"},
	{Email: "diana.miller@email.com", FirstName: "Diana", LastName: "Miller", Phone: "555-0106"},
	{Email: "edward.jones@email.com", FirstName: "Edward", LastName: "Jones", Phone: "555-0107"},
	{Email: "fiona.garcia@email.com", FirstName: "Fiona", LastName: "Garcia", Phone: "555-0108"},
}

var (
	freeShippingFrom = decimal.RequireFromString("50.00")
	shippingFee      = decimal.RequireFromString("9.99")
	taxRate          = decimal.RequireFromString("0.08")
)

// Generator fills a store with a fixed catalog and seeded random orders.
type Generator struct {
	Store *repos.Store
	Days  int
	Clock Clock
	rnd   *rand.Rand
}

func NewGenerator(store *repos.Store, seed int64, days int) *Generator {
	if days <= 0 {
		days = 30
	}
	return &Generator{
		Store: store,
		Days:  days,
		Clock: realClock{},
		rnd:   rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5eed)),
	}
}

type GenerateSummary struct {
	Categories int
	Products   int
	Customers  int
	Orders     int
	OrderItems int
}

// Generate writes the sample catalog and one order batch per day for the
// trailing Days days, and records the run in the import ledger.
func (g *Generator) Generate() (GenerateSummary, error) {
	run := domain.ImportRun{ID: uuid.NewString(), Source: "generator", StartedAt: g.Clock.Now()}
	if err := g.Store.Imports.Start(run); err != nil {
		return GenerateSummary{}, err
	}
	sum, err := g.generate()
	run.FinishedAt = g.Clock.Now()
	run.Status = domain.ImportCompleted
	if err != nil {
		run.Status = domain.ImportFailed
	}
	if ferr := g.Store.Imports.Finish(run); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		return sum, err
	}
	applog.Audit("sample.generate.done", map[string]any{
		"import_run": run.ID, "categories": sum.Categories, "products": sum.Products,
		"customers": sum.Customers, "orders": sum.Orders, "order_items": sum.OrderItems,
	})
	return sum, nil
}

func (g *Generator) generate() (GenerateSummary, error) {
	var sum GenerateSummary

	catIDs := make([]int64, 0, len(sampleCategories))
	for _, c := range sampleCategories {
		id, err := g.Store.Categories.Create(c)
		if err != nil {
			return sum, err
		}
		catIDs = append(catIDs, id)
	}
	sum.Categories = len(catIDs)

	prodIDs := make([]int64, 0, len(sampleProducts))
	prices := make([]decimal.Decimal, 0, len(sampleProducts))
	for _, sp := range sampleProducts {
		price := decimal.RequireFromString(sp.price)
		p := domain.Product{
			Name:          sp.name,
			SKU:           sp.sku,
			CategoryID:    catIDs[sp.category],
			Price:         price,
			Cost:          decimal.NewNullDecimal(decimal.RequireFromString(sp.cost)),
			Description:   "High quality " + strings.ToLower(sp.name),
			StockQuantity: sp.stock,
			IsActive:      true,
		}
		id, err := g.Store.Products.Create(p)
		if err != nil {
			return sum, err
		}
		prodIDs = append(prodIDs, id)
		prices = append(prices, price)
	}
	sum.Products = len(prodIDs)

	custIDs := make([]int64, 0, len(sampleCustomers))
	for _, c := range sampleCustomers {
		id, err := g.Store.Customers.Create(c)
		if err != nil {
			return sum, err
		}
		custIDs = append(custIDs, id)
	}
	sum.Customers = len(custIDs)

	base := g.Clock.Now().AddDate(0, 0, -g.Days)
	for day := 0; day < g.Days; day++ {
		date := base.AddDate(0, 0, day)
		n := 2 + g.rnd.IntN(7) // 2..8 orders
		for range n {
			o, items := g.order(date, custIDs, prodIDs, prices)
			if _, err := g.Store.Orders.Create(o, items); err != nil {
				return sum, fmt.Errorf("sample order for %s: %w", date.Format(time.DateOnly), err)
			}
			sum.Orders++
			sum.OrderItems += len(items)
		}
	}
	return sum, nil
}

func (g *Generator) order(date time.Time, custIDs, prodIDs []int64, prices []decimal.Decimal) (domain.Order, []domain.OrderItem) {
	k := min(1+g.rnd.IntN(4), len(prodIDs)) // 1..4 distinct products
	picks := g.rnd.Perm(len(prodIDs))[:k]

	subtotal := decimal.Zero
	items := make([]domain.OrderItem, 0, k)
	for _, idx := range picks {
		qty := 1 + g.rnd.IntN(3)
		total := prices[idx].Mul(decimalInt(qty))
		items = append(items, domain.OrderItem{
			ProductID:  prodIDs[idx],
			Quantity:   qty,
			UnitPrice:  prices[idx],
			TotalPrice: total,
		})
		subtotal = subtotal.Add(total)
	}

	shipping := decimal.Zero
	if subtotal.LessThan(freeShippingFrom) {
		shipping = shippingFee
	}
	tax := subtotal.Mul(taxRate).Round(2)

	return domain.Order{
		CustomerID:   custIDs[g.rnd.IntN(len(custIDs))],
		OrderDate:    date,
		Status:       "completed",
		TotalAmount:  subtotal.Add(shipping).Add(tax),
		ShippingCost: shipping,
		TaxAmount:    tax,
	}, items
}
