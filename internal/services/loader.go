package services

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"shoplytics/internal/domain"
	applog "shoplytics/internal/log"
	"shoplytics/internal/repos"
	"shoplytics/internal/validate"
)

// Source files read from the data directory.
const (
	CategoriesFile = "categories.csv"
	ProductsFile   = "products.csv"
	CustomersFile  = "customers.csv"
	OrdersFile     = "orders.csv"
	OrderItemsFile = "order_items.csv"
)

var sourceFiles = []string{CategoriesFile, ProductsFile, CustomersFile, OrdersFile, OrderItemsFile}

// CSVLoader populates a store from the CSV files in DataDir.
type CSVLoader struct {
	Store   *repos.Store
	DataDir string
	Clock   Clock
}

func NewCSVLoader(store *repos.Store, dataDir string) *CSVLoader {
	return &CSVLoader{Store: store, DataDir: dataDir, Clock: realClock{}}
}

type LoadSummary struct {
	Categories int
	Products   int
	Customers  int
	Orders     int
	OrderItems int
}

// LoadCategories inserts every row of categories.csv and returns the new ids in file order.
func (l *CSVLoader) LoadCategories() ([]int64, error) {
	var ids []int64
	err := eachRow(l.DataDir, CategoriesFile, func(r csvRecord) error {
		name, err := r.str("name")
		if err != nil {
			return err
		}
		id, err := l.Store.Categories.Create(domain.Category{Name: name, Description: r.optional("description")})
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

func productFromRecord(r csvRecord) (domain.Product, error) {
	var p domain.Product
	var err error
	if p.Name, err = r.str("name"); err != nil {
		return p, err
	}
	if p.SKU, err = r.str("sku"); err != nil {
		return p, err
	}
	if p.CategoryID, err = r.id("category_id"); err != nil {
		return p, err
	}
	if p.Price, err = r.money("price"); err != nil {
		return p, err
	}
	if p.Cost, err = r.optionalMoney("cost"); err != nil {
		return p, err
	}
	if p.StockQuantity, err = r.integer("stock_quantity"); err != nil {
		return p, err
	}
	if p.IsActive, err = r.flag("is_active"); err != nil {
		return p, err
	}
	p.Description = r.optional("description")
	return p, nil
}

// LoadProducts inserts every row of products.csv and returns the new ids in file order.
func (l *CSVLoader) LoadProducts() ([]int64, error) {
	var ids []int64
	err := eachRow(l.DataDir, ProductsFile, func(r csvRecord) error {
		p, err := productFromRecord(r)
		if err != nil {
			return err
		}
		if _, ok := validate.SKU(p.SKU); !ok {
			applog.Warn("product.sku_format", map[string]any{"sku": p.SKU, "line": r.line})
		}
		id, err := l.Store.Products.Create(p)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// LoadCustomers inserts every row of customers.csv and returns the new ids in file order.
func (l *CSVLoader) LoadCustomers() ([]int64, error) {
	var ids []int64
	err := eachRow(l.DataDir, CustomersFile, func(r csvRecord) error {
		email, err := r.str("email")
		if err != nil {
			return err
		}
		if _, ok := validate.Email(email); !ok {
			applog.Warn("customer.email_format", map[string]any{"email": email, "line": r.line})
		}
		id, err := l.Store.Customers.Create(domain.Customer{
			Email:     email,
			FirstName: r.optional("first_name"),
			LastName:  r.optional("last_name"),
			Phone:     r.optional("phone"),
		})
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

func itemFromRecord(r csvRecord) (orderID int64, it domain.OrderItem, err error) {
	if orderID, err = r.id("order_id"); err != nil {
		return 0, it, err
	}
	if it.ProductID, err = r.id("product_id"); err != nil {
		return 0, it, err
	}
	if it.Quantity, err = r.integer("quantity"); err != nil {
		return 0, it, err
	}
	if it.UnitPrice, err = r.money("unit_price"); err != nil {
		return 0, it, err
	}
	if it.TotalPrice, err = r.money("total_price"); err != nil {
		return 0, it, err
	}
	return orderID, it, nil
}

func orderFromRecord(r csvRecord) (sourceID int64, o domain.Order, err error) {
	if sourceID, err = r.id("id"); err != nil {
		return 0, o, err
	}
	if o.CustomerID, err = r.id("customer_id"); err != nil {
		return 0, o, err
	}
	if o.OrderDate, err = r.date("order_date"); err != nil {
		return 0, o, err
	}
	o.Status = r.optional("status")
	if o.TotalAmount, err = r.money("total_amount"); err != nil {
		return 0, o, err
	}
	if o.ShippingCost, err = r.money("shipping_cost"); err != nil {
		return 0, o, err
	}
	if o.TaxAmount, err = r.money("tax_amount"); err != nil {
		return 0, o, err
	}
	return sourceID, o, nil
}

// LoadOrdersAndItems indexes order_items.csv by order id, then creates each
// order of orders.csv together with its items. It returns the new order ids
// in file order and the number of items written. The first failing order
// stops the load; orders created before it are kept.
func (l *CSVLoader) LoadOrdersAndItems() ([]int64, int, error) {
	itemsByOrder := map[int64][]domain.OrderItem{}
	err := eachRow(l.DataDir, OrderItemsFile, func(r csvRecord) error {
		orderID, it, err := itemFromRecord(r)
		if err != nil {
			return err
		}
		if want := it.UnitPrice.Mul(decimalInt(it.Quantity)); !want.Equal(it.TotalPrice) {
			applog.Warn("order_item.total_mismatch", map[string]any{
				"line": r.line, "order_id": orderID, "total_price": it.TotalPrice.String(), "expected": want.String(),
			})
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], it)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	var ids []int64
	written := 0
	err = eachRow(l.DataDir, OrdersFile, func(r csvRecord) error {
		sourceID, o, err := orderFromRecord(r)
		if err != nil {
			return err
		}
		items := itemsByOrder[sourceID]
		if want := domain.ExpectedTotal(o, items); !want.Equal(o.TotalAmount) {
			applog.Warn("order.total_mismatch", map[string]any{
				"line": r.line, "order_id": sourceID, "total_amount": o.TotalAmount.String(), "expected": want.String(),
			})
		}
		id, err := l.Store.Orders.Create(o, items)
		if err != nil {
			return fmt.Errorf("%s:%d: order %d: %w", OrdersFile, r.line, sourceID, err)
		}
		ids = append(ids, id)
		written += len(items)
		return nil
	})
	return ids, written, err
}

// Checksum is the BLAKE2b-256 digest over the five source files, in a fixed order.
func (l *CSVLoader) Checksum() (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	for _, name := range sourceFiles {
		f, err := os.Open(filepath.Join(l.DataDir, name))
		if err != nil {
			return "", fmt.Errorf("open %s: %w", name, err)
		}
		_, _ = io.WriteString(h, name+"\x00")
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LoadAll runs the four load steps in order and records the run in the
// import ledger. A failed step leaves earlier steps' rows in place.
func (l *CSVLoader) LoadAll() (LoadSummary, error) {
	var sum LoadSummary
	checksum, err := l.Checksum()
	if err != nil {
		return sum, err
	}

	prev, err := l.Store.Imports.FindCompleted(checksum)
	switch {
	case err == nil:
		applog.Warn("csv.duplicate_import", map[string]any{"checksum": checksum, "previous_run": prev.ID})
	case !isNotFound(err):
		return sum, err
	}

	run := domain.ImportRun{ID: uuid.NewString(), Source: "csv:" + l.DataDir, Checksum: checksum, StartedAt: l.Clock.Now()}
	if err := l.Store.Imports.Start(run); err != nil {
		return sum, err
	}
	applog.Audit("csv.load.start", map[string]any{"import_run": run.ID, "dir": l.DataDir, "checksum": checksum})

	err = l.loadSteps(&sum)

	run.FinishedAt = l.Clock.Now()
	run.Status = domain.ImportCompleted
	if err != nil {
		run.Status = domain.ImportFailed
	}
	if ferr := l.Store.Imports.Finish(run); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		return sum, err
	}
	applog.Audit("csv.load.done", map[string]any{
		"import_run": run.ID, "categories": sum.Categories, "products": sum.Products,
		"customers": sum.Customers, "orders": sum.Orders, "order_items": sum.OrderItems,
	})
	return sum, nil
}

func (l *CSVLoader) loadSteps(sum *LoadSummary) error {
	cats, err := l.LoadCategories()
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	sum.Categories = len(cats)
	applog.Info("csv.load.categories", map[string]any{"count": sum.Categories})

	prods, err := l.LoadProducts()
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	sum.Products = len(prods)
	applog.Info("csv.load.products", map[string]any{"count": sum.Products})

	custs, err := l.LoadCustomers()
	if err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	sum.Customers = len(custs)
	applog.Info("csv.load.customers", map[string]any{"count": sum.Customers})

	orders, items, err := l.LoadOrdersAndItems()
	sum.Orders, sum.OrderItems = len(orders), items
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	applog.Info("csv.load.orders", map[string]any{"orders": sum.Orders, "order_items": sum.OrderItems})
	return nil
}

func isNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}
