package services

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

// WriteReport renders the text sales report: top 5 products, revenue by
// category and the last 7 days.
func (a *Analyzer) WriteReport(w io.Writer) error {
	top, err := a.TopSellingProducts(5)
	if err != nil {
		return err
	}
	cats, err := a.RevenueByCategory()
	if err != nil {
		return err
	}
	daily, err := a.DailySalesReport(7)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "=== E-COMMERCE SALES REPORT ===\n\n")

	fmt.Fprintln(bw, "TOP 5 SELLING PRODUCTS:")
	for i, p := range top {
		fmt.Fprintf(bw, "%d. %s (%s)\n", i+1, p.ProductName, p.SKU)
		fmt.Fprintf(bw, "   Category: %s\n", p.Category)
		fmt.Fprintf(bw, "   Quantity Sold: %d\n", p.QuantitySold)
		fmt.Fprintf(bw, "   Revenue: %s\n", money(p.Revenue))
		fmt.Fprintf(bw, "   Avg Price: %s\n\n", money(p.AvgPrice))
	}

	fmt.Fprintln(bw, "REVENUE BY CATEGORY:")
	for _, c := range cats {
		fmt.Fprintf(bw, "- %s: %s\n", c.Category, money(c.Revenue))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "DAILY SALES (LAST 7 DAYS):")
	for _, d := range daily {
		fmt.Fprintf(bw, "%s: %d orders, %s revenue\n", d.Date.Format(time.DateOnly), d.TotalOrders, money(d.TotalRevenue))
	}
	return bw.Flush()
}
