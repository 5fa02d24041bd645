package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplytics/internal/domain"
	"shoplytics/internal/services"
)

func TestGenerator_Generate(t *testing.T) {
	s := memStore(t)
	g := services.NewGenerator(s, 7, 5)
	g.Clock = fixedClock{time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}

	sum, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Categories)
	assert.Equal(t, 10, sum.Products)
	assert.Equal(t, 8, sum.Customers)
	assert.GreaterOrEqual(t, sum.Orders, 5*2)
	assert.LessOrEqual(t, sum.Orders, 5*8)
	assert.GreaterOrEqual(t, sum.OrderItems, sum.Orders)

	n, err := s.Orders.Count()
	require.NoError(t, err)
	assert.Equal(t, sum.Orders, n)
	n, err = s.Orders.CountItems()
	require.NoError(t, err)
	assert.Equal(t, sum.OrderItems, n)

	for id := int64(1); id <= int64(sum.Orders); id++ {
		o, items, err := s.Orders.Get(id)
		require.NoError(t, err)
		assert.True(t, domain.ExpectedTotal(o, items).Equal(o.TotalAmount), "order %d total", id)
		assert.False(t, o.OrderDate.Before(time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)))
		assert.True(t, o.OrderDate.Before(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))
		for _, it := range items {
			assert.True(t, it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Equal(it.TotalPrice))
		}
	}

	run, err := s.Imports.Latest()
	require.NoError(t, err)
	assert.Equal(t, "generator", run.Source)
	assert.Equal(t, domain.ImportCompleted, run.Status)
}

func TestGenerator_SameSeedSameData(t *testing.T) {
	now := fixedClock{time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	run := func(seed int64) services.GenerateSummary {
		g := services.NewGenerator(memStore(t), seed, 10)
		g.Clock = now
		sum, err := g.Generate()
		require.NoError(t, err)
		return sum
	}
	assert.Equal(t, run(99), run(99))
}

func TestGenerator_FeedsReport(t *testing.T) {
	s := memStore(t)
	now := fixedClock{time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	g := services.NewGenerator(s, 1, 30)
	g.Clock = now
	_, err := g.Generate()
	require.NoError(t, err)

	a := services.NewAnalyzer(s.Sales)
	a.Clock = now

	top, err := a.TopSellingProducts(5)
	require.NoError(t, err)
	require.Len(t, top, 5)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].QuantitySold, top[i].QuantitySold)
	}

	daily, err := a.DailySalesReport(7)
	require.NoError(t, err)
	// Sample orders cover the 30 days before today, so the window holds days -7..-1.
	require.Len(t, daily, 7)
	assert.Equal(t, "2026-10-17", daily[0].Date.Format(time.DateOnly))
	assert.Equal(t, "2026-10-11", daily[6].Date.Format(time.DateOnly))
}
