package services_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplytics/internal/domain"
	"shoplytics/internal/services"
)

const (
	categoriesCSV = `
name,description
Electronics,Devices and accessories
Books,
`
	productsCSV = `
name,sku,category_id,price,cost,description,stock_quantity,is_active
Phone,PHONE001,1,699.99,400.00,A phone,10,1
Novel,BOOK001,2,19.99,,Paperback,40,1
Old Radio,RADIO001,1,45.00,20.00,,0,0
`
	customersCSV = `
email,first_name,last_name,phone
john.doe@email.com,John,Doe,555-0101
jane.smith@email.com,Jane,Smith,
`
	ordersCSV = `
id,customer_id,order_date,status,total_amount,shipping_cost,tax_amount
10,1,2026-10-15T09:30:00,completed,775.58,0.00,55.60
11,2,2026-10-16,completed,31.58,9.99,1.60
`
	// items of order 10 are split around order 11's
	orderItemsCSV = `
order_id,product_id,quantity,unit_price,total_price
10,1,1,699.99,699.99
11,2,1,19.99,19.99
10,2,1,19.99,19.99
`
)

func sampleFiles() map[string]string {
	return map[string]string{
		services.CategoriesFile: categoriesCSV,
		services.ProductsFile:   productsCSV,
		services.CustomersFile:  customersCSV,
		services.OrdersFile:     ordersCSV,
		services.OrderItemsFile: orderItemsCSV,
	}
}

func TestCSVLoader_LoadAll(t *testing.T) {
	s := memStore(t)
	l := services.NewCSVLoader(s, writeFiles(t, sampleFiles()))

	sum, err := l.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, services.LoadSummary{Categories: 2, Products: 3, Customers: 2, Orders: 2, OrderItems: 3}, sum)

	n, err := s.Orders.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.Orders.CountItems()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = s.Customers.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	o, items, err := s.Orders.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "775.58", o.TotalAmount.String())
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, int64(2), items[1].ProductID)

	prods, err := s.Products.ListActive()
	require.NoError(t, err)
	require.Len(t, prods, 2)
	assert.Equal(t, "19.99", prods[1].Price.String())
	assert.False(t, prods[1].Cost.Valid)

	run, err := s.Imports.Latest()
	require.NoError(t, err)
	assert.Equal(t, domain.ImportCompleted, run.Status)
	assert.Len(t, run.Checksum, 64)
}

func TestCSVLoader_IDsFollowFileOrder(t *testing.T) {
	s := memStore(t)
	l := services.NewCSVLoader(s, writeFiles(t, sampleFiles()))

	cats, err := l.LoadCategories()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, cats)

	prods, err := l.LoadProducts()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, prods)

	custs, err := l.LoadCustomers()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, custs)

	orders, items, err := l.LoadOrdersAndItems()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, orders)
	assert.Equal(t, 3, items)
}

func TestCSVLoader_OrderWithoutItems(t *testing.T) {
	files := sampleFiles()
	files[services.OrderItemsFile] = "order_id,product_id,quantity,unit_price,total_price\n"
	s := memStore(t)
	l := services.NewCSVLoader(s, writeFiles(t, files))

	sum, err := l.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Orders)
	assert.Zero(t, sum.OrderItems)
}

func TestCSVLoader_ValidationErrors(t *testing.T) {
	cases := []struct {
		name     string
		products string
		field    string
		line     int
	}{
		{
			name:     "bad decimal",
			products: "name,sku,category_id,price,cost,description,stock_quantity,is_active\nPhone,P1,1,abc,,,1,1\n",
			field:    "price",
			line:     2,
		},
		{
			name:     "bad flag",
			products: "name,sku,category_id,price,cost,description,stock_quantity,is_active\nPhone,P1,1,1.00,,,1,1\nCase,P2,1,2.00,,,1,maybe\n",
			field:    "is_active",
			line:     3,
		},
		{
			name:     "missing column",
			products: "name,sku,price,cost,description,stock_quantity,is_active\nPhone,P1,1.00,,,1,1\n",
			field:    "category_id",
			line:     2,
		},
		{
			name:     "empty required",
			products: "name,sku,category_id,price,cost,description,stock_quantity,is_active\n,P1,1,1.00,,,1,1\n",
			field:    "name",
			line:     2,
		},
		{
			name:     "sub-cent price",
			products: "name,sku,category_id,price,cost,description,stock_quantity,is_active\nPhone,P1,1,1.00,,,1,1\nCase,P2,1,1.999,,,1,1\n",
			field:    "price",
			line:     3,
		},
		{
			name:     "price out of range",
			products: "name,sku,category_id,price,cost,description,stock_quantity,is_active\nPhone,P1,1,100000000000000000000.00,,,1,1\n",
			field:    "price",
			line:     2,
		},
		{
			name:     "sub-cent cost",
			products: "name,sku,category_id,price,cost,description,stock_quantity,is_active\nPhone,P1,1,1.00,0.005,,1,1\n",
			field:    "cost",
			line:     2,
		},
		{
			name:     "word flag",
			products: "name,sku,category_id,price,cost,description,stock_quantity,is_active\nPhone,P1,1,1.00,,,1,true\n",
			field:    "is_active",
			line:     2,
		},
		{
			name:     "bad count",
			products: "name,sku,category_id,price,cost,description,stock_quantity,is_active\nPhone,P1,1,1.00,,,1.5,1\n",
			field:    "stock_quantity",
			line:     2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			files := sampleFiles()
			files[services.ProductsFile] = tc.products
			s := memStore(t)
			l := services.NewCSVLoader(s, writeFiles(t, files))
			_, err := l.LoadCategories()
			require.NoError(t, err)

			_, err = l.LoadProducts()
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, services.ProductsFile, verr.Source)
			assert.Equal(t, tc.line, verr.Line)
		})
	}
}

func TestCSVLoader_SubCentItemPriceCarriesLine(t *testing.T) {
	files := sampleFiles()
	files[services.OrderItemsFile] = "order_id,product_id,quantity,unit_price,total_price\n10,1,1,699.99,699.99\n10,2,1,19.995,19.99\n"
	l := services.NewCSVLoader(memStore(t), writeFiles(t, files))

	_, _, err := l.LoadOrdersAndItems()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, services.OrderItemsFile, verr.Source)
	assert.Equal(t, 3, verr.Line)
	assert.Equal(t, "unit_price", verr.Field)
}

func TestCSVLoader_BadOrderDate(t *testing.T) {
	files := sampleFiles()
	files[services.OrdersFile] = "id,customer_id,order_date,status,total_amount,shipping_cost,tax_amount\n10,1,15/10/2026,completed,1.00,0,0\n"
	s := memStore(t)
	l := services.NewCSVLoader(s, writeFiles(t, files))

	_, _, err := l.LoadOrdersAndItems()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "order_date", verr.Field)
}

func TestCSVLoader_FailedOrderStopsLoad(t *testing.T) {
	files := sampleFiles()
	files[services.OrdersFile] = `id,customer_id,order_date,status,total_amount,shipping_cost,tax_amount
10,1,2026-10-15,completed,775.58,0.00,55.60
11,99,2026-10-16,completed,31.58,9.99,1.60
12,2,2026-10-17,completed,5.00,0,0
`
	s := memStore(t)
	l := services.NewCSVLoader(s, writeFiles(t, files))

	sum, err := l.LoadAll()
	var serr *domain.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 2, sum.Categories, "earlier steps are kept")
	assert.Equal(t, 1, sum.Orders)

	n, err := s.Orders.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.Orders.CountItems()
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the failed order's item is rolled back")

	run, err := s.Imports.Latest()
	require.NoError(t, err)
	assert.Equal(t, domain.ImportFailed, run.Status)
}

func TestCSVLoader_MissingFile(t *testing.T) {
	files := sampleFiles()
	delete(files, services.CustomersFile)
	l := services.NewCSVLoader(memStore(t), writeFiles(t, files))

	_, err := l.LoadCustomers()
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = l.LoadAll()
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = l.Store.Imports.Latest()
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf, "no run is recorded when the sources cannot be read")
}

func TestCSVLoader_LogsMismatchesAndDuplicates(t *testing.T) {
	files := sampleFiles()
	files[services.OrdersFile] = "id,customer_id,order_date,status,total_amount,shipping_cost,tax_amount\n10,1,2026-10-15,completed,1.00,0,0\n"
	s := memStore(t)
	l := services.NewCSVLoader(s, writeFiles(t, files))

	first := captureLogs(t, func() {
		_, err := l.LoadAll()
		require.NoError(t, err)
	})
	assert.True(t, hasAction(first, "order.total_mismatch"))
	assert.True(t, hasAction(first, "csv.load.done"))
	assert.False(t, hasAction(first, "csv.duplicate_import"))

	second := captureLogs(t, func() {
		_, err := l.LoadAll()
		require.NoError(t, err)
	})
	assert.True(t, hasAction(second, "csv.duplicate_import"))
}

func TestCSVLoader_ChecksumTracksContent(t *testing.T) {
	a := services.NewCSVLoader(nil, writeFiles(t, sampleFiles()))
	b := services.NewCSVLoader(nil, writeFiles(t, sampleFiles()))
	files := sampleFiles()
	files[services.CategoriesFile] = categoriesCSV + "Toys,\n"
	c := services.NewCSVLoader(nil, writeFiles(t, files))

	sumA, err := a.Checksum()
	require.NoError(t, err)
	sumB, err := b.Checksum()
	require.NoError(t, err)
	sumC, err := c.Checksum()
	require.NoError(t, err)

	assert.Equal(t, sumA, sumB)
	assert.NotEqual(t, sumA, sumC)
}
