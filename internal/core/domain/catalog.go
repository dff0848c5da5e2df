package domain

import (
	"strings"
	"time"
)

type TimeWindow string

const (
	WindowAll     TimeWindow = "all"
	WindowWeek    TimeWindow = "7d"
	WindowMonth   TimeWindow = "30d"
	defaultWindow            = WindowAll
)

func (w TimeWindow) days() (int, bool) {
	switch w {
	case WindowWeek:
		return 7, true
	case WindowMonth:
		return 30, true
	}
	return 0, false
}

type ProductFilter struct {
	Search string     `json:"search"`
	Window TimeWindow `json:"window"`
}

// FilterProducts applies the catalog time window and name search. With a
// window set, products lacking a creation date are dropped.
func FilterProducts(products []Product, f ProductFilter, now time.Time) []Product {
	window := f.Window
	if window == "" {
		window = defaultWindow
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if days, ok := window.days(); ok {
			if p.CreatedAt == nil {
				continue
			}
			if now.Sub(*p.CreatedAt) > time.Duration(days)*day {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(p.DisplayBase()), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}
