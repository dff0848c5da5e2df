package domain

import (
	"sort"
	"time"
)

const (
	salesWindowDays = 30
	recentDayCount  = 15
	unknownStatus   = "unknown"
	day             = 24 * time.Hour
)

// DailyRevenue is the revenue of orders created on one UTC calendar day.
type DailyRevenue struct {
	Day     string `json:"day"` // YYYY-MM-DD
	Revenue int64  `json:"revenue"`
}

type SalesReport struct {
	TotalOrders    int            `json:"total_orders"`
	TotalItemsSold int            `json:"total_items_sold"`
	TotalRevenue   int64          `json:"total_revenue"`
	ByStatus       map[string]int `json:"by_status"`
	RecentDays     []DailyRevenue `json:"recent_days"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// Revenue is the amount an order brought in. The backend's totalPrice wins;
// otherwise items are summed with price defaulting to 0 and quantity to 1.
func Revenue(d Delivery) int64 {
	if d.TotalPrice != nil {
		return *d.TotalPrice
	}
	var sum int64
	for _, item := range d.Items {
		price := int64(0)
		if item.Price != nil {
			price = *item.Price
		}
		qty := 1
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		sum += price * int64(qty)
	}
	return sum
}

// ItemsSold counts units across orders. Items without a quantity count as 0.
func ItemsSold(deliveries []Delivery) int {
	total := 0
	for _, d := range deliveries {
		for _, item := range d.Items {
			if item.Quantity != nil {
				total += *item.Quantity
			}
		}
	}
	return total
}

// BuildSalesReport aggregates deliveries as seen at now.
func BuildSalesReport(deliveries []Delivery, now time.Time) SalesReport {
	report := SalesReport{
		TotalOrders:    len(deliveries),
		TotalItemsSold: ItemsSold(deliveries),
		ByStatus:       make(map[string]int),
		GeneratedAt:    now,
	}

	byDay := make(map[string]int64)
	for _, d := range deliveries {
		revenue := Revenue(d)
		report.TotalRevenue += revenue

		status := string(d.Status)
		if status == "" {
			status = unknownStatus
		}
		report.ByStatus[status]++

		if d.CreatedAt == nil || d.CreatedAt.IsZero() {
			continue
		}
		if floorDays(now.Sub(*d.CreatedAt)) > salesWindowDays {
			continue
		}
		byDay[d.CreatedAt.UTC().Format(time.DateOnly)] += revenue
	}

	report.RecentDays = recentDays(byDay, recentDayCount)
	return report
}

func recentDays(byDay map[string]int64, n int) []DailyRevenue {
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > n {
		keys = keys[len(keys)-n:]
	}

	out := make([]DailyRevenue, len(keys))
	for i, k := range keys {
		out[i] = DailyRevenue{Day: k, Revenue: byDay[k]}
	}
	return out
}

func floorDays(d time.Duration) int64 {
	return floorDiv(int64(d), int64(day))
}
