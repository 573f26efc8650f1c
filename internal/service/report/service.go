package report

import (
	"context"
	"sort"
	"time"

	"github.com/hugohenrick/warung-digital/internal/domain/product"
	"github.com/hugohenrick/warung-digital/internal/domain/sale"
)

const (
	dayLayout      = "2006-01-02"
	topProductsMax = 5
	recentSalesMax = 5
)

// SalesReader lê o histórico de vendas
type SalesReader interface {
	Query(ctx context.Context, from, to time.Time, cashierID string) (sale.Log, error)
}

// Catalog fornece o retrato do catálogo
type Catalog interface {
	Count() int
	LowStock(threshold int) []product.Product
}

// ThresholdSource fornece o limite de estoque baixo vigente
type ThresholdSource interface {
	LowStockThreshold() int
}

// MethodTotal agrega as vendas de uma forma de pagamento
type MethodTotal struct {
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
}

// ProductSales agrega as vendas de um produto
type ProductSales struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Revenue float64 `json:"revenue"`
}

// DailyTotal agrega as vendas de um dia
type DailyTotal struct {
	Date         string  `json:"date"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
}

// Summary é o resumo de vendas de um período
type Summary struct {
	From          time.Time                          `json:"from"`
	To            time.Time                          `json:"to"`
	Revenue       float64                            `json:"revenue"`
	Transactions  int                                `json:"transactions"`
	ItemsSold     int                                `json:"itemsSold"`
	AverageTicket float64                            `json:"averageTicket"`
	ByMethod      map[sale.PaymentMethod]MethodTotal `json:"byMethod"`
	TopProducts   []ProductSales                     `json:"topProducts"`
	Daily         []DailyTotal                       `json:"daily"`
}

// Dashboard reúne os números da tela inicial
type Dashboard struct {
	TodayRevenue      float64           `json:"todayRevenue"`
	TodayTransactions int               `json:"todayTransactions"`
	TodayItemsSold    int               `json:"todayItemsSold"`
	ProductCount      int               `json:"productCount"`
	LowStockThreshold int               `json:"lowStockThreshold"`
	LowStock          []product.Product `json:"lowStock"`
	RecentSales       sale.Log          `json:"recentSales"`
}

// Service monta relatórios a partir do histórico e do catálogo
type Service struct {
	sales     SalesReader
	catalog   Catalog
	threshold ThresholdSource
	loc       *time.Location
}

// NewService cria uma nova instância de Service. loc define o fuso dos agrupamentos diários.
func NewService(sales SalesReader, catalog Catalog, threshold ThresholdSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sales:     sales,
		catalog:   catalog,
		threshold: threshold,
		loc:       loc,
	}
}

// Summary resume as vendas em [from, to)
func (s *Service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	log, err := s.sales.Query(ctx, from, to, "")
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		From:        from,
		To:          to,
		ByMethod:    map[sale.PaymentMethod]MethodTotal{},
		TopProducts: []ProductSales{},
		Daily:       []DailyTotal{},
	}

	perProduct := map[string]*ProductSales{}
	perDay := map[string]*DailyTotal{}

	for _, r := range log {
		sum.Revenue += r.Total
		sum.Transactions++
		sum.ItemsSold += r.ItemCount()

		mt := sum.ByMethod[r.Method]
		mt.Transactions++
		mt.Revenue += r.Total
		sum.ByMethod[r.Method] = mt

		day := r.Date.In(s.loc).Format(dayLayout)
		dt, ok := perDay[day]
		if !ok {
			dt = &DailyTotal{Date: day}
			perDay[day] = dt
		}
		dt.Transactions++
		dt.Revenue += r.Total

		for _, l := range r.Items {
			ps, ok := perProduct[l.Code]
			if !ok {
				ps = &ProductSales{Code: l.Code, Name: l.Name}
				perProduct[l.Code] = ps
			}
			ps.Qty += l.Qty
			ps.Revenue += float64(l.Qty) * l.Price
		}
	}

	if sum.Transactions > 0 {
		sum.AverageTicket = sum.Revenue / float64(sum.Transactions)
	}

	for _, ps := range perProduct {
		sum.TopProducts = append(sum.TopProducts, *ps)
	}
	sort.Slice(sum.TopProducts, func(i, j int) bool {
		a, b := sum.TopProducts[i], sum.TopProducts[j]
		if a.Qty != b.Qty {
			return a.Qty > b.Qty
		}
		return a.Code < b.Code
	})
	if len(sum.TopProducts) > topProductsMax {
		sum.TopProducts = sum.TopProducts[:topProductsMax]
	}

	for _, dt := range perDay {
		sum.Daily = append(sum.Daily, *dt)
	}
	sort.Slice(sum.Daily, func(i, j int) bool {
		return sum.Daily[i].Date < sum.Daily[j].Date
	})

	return sum, nil
}

// Dashboard monta os números do dia de now
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	today, err := s.sales.Query(ctx, start, end, "")
	if err != nil {
		return nil, err
	}
	all, err := s.sales.Query(ctx, time.Time{}, time.Time{}, "")
	if err != nil {
		return nil, err
	}

	threshold := s.threshold.LowStockThreshold()
	d := &Dashboard{
		ProductCount:      s.catalog.Count(),
		LowStockThreshold: threshold,
		LowStock:          s.catalog.LowStock(threshold),
		RecentSales:       all,
	}
	for _, r := range today {
		d.TodayRevenue += r.Total
		d.TodayTransactions++
		d.TodayItemsSold += r.ItemCount()
	}
	if len(d.RecentSales) > recentSalesMax {
		d.RecentSales = d.RecentSales[:recentSalesMax]
	}
	return d, nil
}
