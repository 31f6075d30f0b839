package shop

import (
	"sort"
	"strings"
	"time"

	"protonshop/internal/model"
)

const (
	DefaultTimezone     = "America/Bogota"
	DefaultChartDays    = 10
	DefaultTopProducts  = 5
	DefaultRecentOrders = 5

	// UnknownProductKey buckets line items that carry no product id.
	UnknownProductKey  = "unknown"
	unknownProductName = "Producto desconocido"

	chartDateKey   = "2006-01-02"
	chartDateLabel = "02/01/2006"
)

type SalesPoint struct {
	Date   string  `json:"date"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type TopProduct struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type CategoryStat struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DashboardSnapshot is recomputed from scratch on every call.
type DashboardSnapshot struct {
	TotalSales        float64        `json:"total_sales"`
	TotalOrders       int            `json:"total_orders"`
	CancelledOrders   int            `json:"cancelled_orders"`
	ActiveOrdersCount int            `json:"active_orders_count"`
	PendingOrders     int            `json:"pending_orders"`
	AverageOrderValue float64        `json:"average_order_value"`
	CancellationRate  float64        `json:"cancellation_rate"`
	AvgShipping       float64        `json:"avg_shipping"`
	TotalProducts     int            `json:"total_products"`
	VisitCount        int64          `json:"visit_count"`
	SalesChart        []SalesPoint   `json:"sales_chart"`
	TopProducts       []TopProduct   `json:"top_products"`
	CategoryStats     []CategoryStat `json:"category_stats"`
	RecentOrders      []model.Order  `json:"recent_orders"`
}

type dashboardConfig struct {
	location     *time.Location
	chartDays    int
	topN         int
	recentN      int
	nameFallback bool
}

type DashboardOption func(*dashboardConfig)

// WithLocation sets the zone used to bucket orders into calendar days.
func WithLocation(loc *time.Location) DashboardOption {
	return func(c *dashboardConfig) {
		if loc != nil {
			c.location = loc
		}
	}
}

func WithChartDays(n int) DashboardOption {
	return func(c *dashboardConfig) {
		if n > 0 {
			c.chartDays = n
		}
	}
}

func WithTopProducts(n int) DashboardOption {
	return func(c *dashboardConfig) {
		if n > 0 {
			c.topN = n
		}
	}
}

func WithRecentOrders(n int) DashboardOption {
	return func(c *dashboardConfig) {
		if n > 0 {
			c.recentN = n
		}
	}
}

// WithNameFallbackKeys keys line items without a product id by their name.
// Distinct products sharing a name are merged.
func WithNameFallbackKeys() DashboardOption {
	return func(c *dashboardConfig) {
		c.nameFallback = true
	}
}

func newDashboardConfig(opts []DashboardOption) dashboardConfig {
	cfg := dashboardConfig{
		location:  defaultLocation(),
		chartDays: DefaultChartDays,
		topN:      DefaultTopProducts,
		recentN:   DefaultRecentOrders,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		// Bogota has no DST.
		return time.FixedZone(DefaultTimezone, -5*60*60)
	}
	return loc
}

// ComputeDashboard derives every dashboard figure from the given orders
// (ascending by creation time) and the current catalog. Empty inputs yield
// zeros and empty lists.
func ComputeDashboard(orders []model.Order, products []model.Product, visitCount int64, opts ...DashboardOption) DashboardSnapshot {
	cfg := newDashboardConfig(opts)

	snap := DashboardSnapshot{
		TotalOrders:   len(orders),
		TotalProducts: len(products),
		VisitCount:    visitCount,
	}

	var shippingSum float64
	shippingCount := 0
	for _, o := range orders {
		if o.Cancelled() {
			snap.CancelledOrders++
		} else {
			snap.TotalSales += o.Total
		}
		if o.Status == model.StatusPending {
			snap.PendingOrders++
		}
		if o.ShippingCost > 0 {
			shippingSum += o.ShippingCost
			shippingCount++
		}
	}

	snap.ActiveOrdersCount = snap.TotalOrders - snap.CancelledOrders
	if snap.ActiveOrdersCount > 0 {
		snap.AverageOrderValue = snap.TotalSales / float64(snap.ActiveOrdersCount)
	}
	if snap.TotalOrders > 0 {
		snap.CancellationRate = float64(snap.CancelledOrders) / float64(snap.TotalOrders) * 100
	}
	if shippingCount > 0 {
		snap.AvgShipping = shippingSum / float64(shippingCount)
	}

	snap.SalesChart = salesChart(orders, cfg)
	snap.TopProducts = topProducts(orders, cfg)
	snap.CategoryStats = CategoryStats(products)
	snap.RecentOrders = recentOrders(orders, cfg.recentN)

	return snap
}

// salesChart buckets active orders by calendar day and keeps the last
// chartDays days that had sales, oldest first. Empty days are absent.
func salesChart(orders []model.Order, cfg dashboardConfig) []SalesPoint {
	buckets := make(map[string]*SalesPoint)
	for _, o := range orders {
		if o.Cancelled() {
			continue
		}
		day := o.CreatedAt.In(cfg.location)
		key := day.Format(chartDateKey)
		b, ok := buckets[key]
		if !ok {
			b = &SalesPoint{Date: key, Label: day.Format(chartDateLabel)}
			buckets[key] = b
		}
		b.Amount += o.Total
	}

	points := make([]SalesPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, *b)
	}
	// ISO dates sort chronologically as strings.
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	if len(points) > cfg.chartDays {
		points = points[len(points)-cfg.chartDays:]
	}
	return points
}

func topProducts(orders []model.Order, cfg dashboardConfig) []TopProduct {
	var ranked []*TopProduct
	index := make(map[string]*TopProduct)

	for _, o := range orders {
		if o.Cancelled() {
			continue
		}
		for _, it := range o.Items {
			key, name := productKey(it, cfg.nameFallback)
			tp, ok := index[key]
			if !ok {
				tp = &TopProduct{Key: key, Name: name}
				index[key] = tp
				ranked = append(ranked, tp)
			}
			tp.Quantity += it.Qty()
			tp.Revenue += it.LineTotal()
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Quantity > ranked[j].Quantity })
	if len(ranked) > cfg.topN {
		ranked = ranked[:cfg.topN]
	}

	out := make([]TopProduct, 0, len(ranked))
	for _, tp := range ranked {
		out = append(out, *tp)
	}
	return out
}

func productKey(it model.OrderItem, byName bool) (key, name string) {
	if id := strings.TrimSpace(it.ProductID); id != "" {
		return id, it.Name
	}
	if byName && it.Name != "" {
		return it.Name, it.Name
	}
	return UnknownProductKey, unknownProductName
}

// CategoryStats counts catalog products per category, largest first (ties by
// name). The full list is returned; callers truncate for display.
func CategoryStats(products []model.Product) []CategoryStat {
	counts := make(map[string]int)
	for _, p := range products {
		name := strings.TrimSpace(p.Category)
		if name == "" {
			name = CategoryUncategorized
		}
		counts[name]++
	}

	stats := make([]CategoryStat, 0, len(counts))
	for name, n := range counts {
		stats = append(stats, CategoryStat{
			Name:       name,
			Count:      n,
			Percentage: float64(n) / float64(len(products)) * 100,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

// recentOrders returns the newest n orders, newest first. Orders with equal
// timestamps come out in reverse input order.
func recentOrders(orders []model.Order, n int) []model.Order {
	out := make([]model.Order, len(orders))
	for i, o := range orders {
		out[len(orders)-1-i] = o
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
