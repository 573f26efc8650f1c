package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hugohenrick/warung-digital/internal/domain/cart"
	"github.com/hugohenrick/warung-digital/internal/domain/product"
	"github.com/hugohenrick/warung-digital/internal/domain/sale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSales sale.Log

func (m memSales) Query(_ context.Context, from, to time.Time, cashierID string) (sale.Log, error) {
	return sale.Log(m).Filter(from, to, cashierID), nil
}

type memCatalog []product.Product

func (m memCatalog) Count() int { return len(m) }

func (m memCatalog) LowStock(threshold int) []product.Product {
	out := []product.Product{}
	for _, p := range m {
		if p.IsLowStock(threshold) {
			out = append(out, p)
		}
	}
	return out
}

type fixedThreshold int

func (f fixedThreshold) LowStockThreshold() int { return int(f) }

func history() sale.Log {
	day1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	var log sale.Log
	log = log.Prepend(sale.NewRecord("T1", day1, cart.Lines{
		{Code: "A", Name: "Air", Price: 3000, Qty: 2},
		{Code: "B", Name: "Beras", Price: 12000, Qty: 1},
	}, sale.MethodCash, 20000, "u1"))
	log = log.Prepend(sale.NewRecord("T2", day1.Add(time.Hour), cart.Lines{
		{Code: "A", Name: "Air", Price: 3000, Qty: 1},
	}, sale.MethodQRIS, 0, "u1"))
	log = log.Prepend(sale.NewRecord("T3", day2, cart.Lines{
		{Code: "C", Name: "Cabai", Price: 1000, Qty: 5},
	}, sale.MethodCash, 5000, "u2"))
	return log
}

func TestSummary(t *testing.T) {
	svc := NewService(memSales(history()), memCatalog{}, fixedThreshold(5), time.UTC)

	sum, err := svc.Summary(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 26000.0, sum.Revenue)
	assert.Equal(t, 3, sum.Transactions)
	assert.Equal(t, 9, sum.ItemsSold)
	assert.InDelta(t, 26000.0/3, sum.AverageTicket, 0.001)

	assert.Equal(t, MethodTotal{Transactions: 2, Revenue: 23000}, sum.ByMethod[sale.MethodCash])
	assert.Equal(t, MethodTotal{Transactions: 1, Revenue: 3000}, sum.ByMethod[sale.MethodQRIS])

	require.Len(t, sum.TopProducts, 3)
	assert.Equal(t, ProductSales{Code: "C", Name: "Cabai", Qty: 5, Revenue: 5000}, sum.TopProducts[0])
	assert.Equal(t, ProductSales{Code: "A", Name: "Air", Qty: 3, Revenue: 9000}, sum.TopProducts[1])

	assert.Equal(t, []DailyTotal{
		{Date: "2026-05-01", Transactions: 2, Revenue: 21000},
		{Date: "2026-05-02", Transactions: 1, Revenue: 5000},
	}, sum.Daily)
}

func TestSummary_RangeAndEmpty(t *testing.T) {
	svc := NewService(memSales(history()), memCatalog{}, fixedThreshold(5), time.UTC)

	from := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	sum, err := svc.Summary(context.Background(), from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Transactions)
	assert.Equal(t, 5000.0, sum.Revenue)

	empty, err := NewService(memSales(nil), memCatalog{}, fixedThreshold(5), time.UTC).Summary(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, empty.AverageTicket)
	assert.Empty(t, empty.TopProducts)
	assert.Empty(t, empty.Daily)
}

func TestSummary_TopProductsIsCapped(t *testing.T) {
	var log sale.Log
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		code := fmt.Sprintf("P%d", i)
		log = log.Prepend(sale.NewRecord("T"+code, at, cart.Lines{{Code: code, Name: code, Price: 1, Qty: i + 1}}, sale.MethodQRIS, 0, ""))
	}

	sum, err := NewService(memSales(log), memCatalog{}, fixedThreshold(5), time.UTC).Summary(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, sum.TopProducts, topProductsMax)
	assert.Equal(t, "P7", sum.TopProducts[0].Code)
}

func TestDashboard(t *testing.T) {
	catalog := memCatalog{
		{Code: "A", Name: "Air", Price: 3000, Stock: 20},
		{Code: "B", Name: "Beras", Price: 12000, Stock: 2},
	}
	svc := NewService(memSales(history()), catalog, fixedThreshold(5), time.UTC)

	now := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	d, err := svc.Dashboard(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 21000.0, d.TodayRevenue)
	assert.Equal(t, 2, d.TodayTransactions)
	assert.Equal(t, 4, d.TodayItemsSold)
	assert.Equal(t, 2, d.ProductCount)
	assert.Equal(t, 5, d.LowStockThreshold)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "B", d.LowStock[0].Code)
	require.Len(t, d.RecentSales, 3)
	assert.Equal(t, "T3", d.RecentSales[0].ID)
}
