package sales

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/internal/money"
)

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Today returns the completed sales made on now's calendar day in now's
// location.
func Today(sales []Sale, now time.Time) []Sale {
	var out []Sale
	for _, s := range sales {
		if s.Completed() && SameDay(s.CreatedAt, now, now.Location()) {
			out = append(out, s)
		}
	}
	return out
}

// Revenue is the sum of totals over completed sales.
func Revenue(sales []Sale) decimal.Decimal {
	total := money.Zero
	for _, s := range sales {
		if s.Completed() {
			total = total.Add(s.Total)
		}
	}
	return total
}

// TodayRevenue is the revenue of today's completed sales.
func TodayRevenue(sales []Sale, now time.Time) decimal.Decimal {
	return Revenue(Today(sales, now))
}

// Recent returns up to n completed sales, newest first.
func Recent(sales []Sale, n int) []Sale {
	if n <= 0 {
		return nil
	}
	var completed []Sale
	for _, s := range sales {
		if s.Completed() {
			completed = append(completed, s)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt.After(completed[j].CreatedAt)
	})
	if len(completed) > n {
		completed = completed[:n]
	}
	return completed
}

// Summary is the dashboard view of a day's trading.
type Summary struct {
	Date         string          `json:"date"`
	Count        int             `json:"count"`
	Revenue      decimal.Decimal `json:"revenue"`
	AverageValue decimal.Decimal `json:"averageValue"`
	Recent       []Sale          `json:"recent"`
}

// Summarize builds today's summary with the latest recentN sales.
func Summarize(sales []Sale, now time.Time, recentN int) Summary {
	today := Today(sales, now)
	revenue := Revenue(today)
	avg := money.Zero
	if len(today) > 0 {
		avg = money.Round(revenue.Div(decimal.NewFromInt(int64(len(today)))))
	}
	return Summary{
		Date:         now.Format(time.DateOnly),
		Count:        len(today),
		Revenue:      revenue,
		AverageValue: avg,
		Recent:       Recent(sales, recentN),
	}
}
