// Package analytics derives the farmer dashboard statistics from a set of
// farmer-scoped orders. Nothing here is persisted; a Snapshot is always
// recomputed from the orders it is given.
package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cropcart/internal/model"
	"cropcart/internal/orders"
)

type ViewMode string

const (
	ViewMonthly ViewMode = "monthly"
	ViewWeekly  ViewMode = "weekly"
)

// OtherType collects revenue of items whose crop no longer exists.
const OtherType = "Other"

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewMonthly:
		return ViewMonthly, nil
	case ViewWeekly:
		return ViewWeekly, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}

type Series struct {
	Labels         []string  `json:"labels"`
	Earnings       []float64 `json:"earnings"`
	Orders         []int     `json:"orders"`
	EarningsGrowth float64   `json:"earnings_growth"`
	OrdersGrowth   float64   `json:"orders_growth"`
}

type BestSeller struct {
	Name      string `json:"name"`
	TotalSold int    `json:"total_sold"`
}

type Snapshot struct {
	Monthly               Series             `json:"monthly"`
	Weekly                Series             `json:"weekly"`
	CurrentMonthEarnings  float64            `json:"current_month_earnings"`
	CurrentMonthOrders    int                `json:"current_month_orders"`
	PreviousMonthEarnings float64            `json:"previous_month_earnings"`
	PreviousMonthOrders   int                `json:"previous_month_orders"`
	TotalOrders           int                `json:"total_orders"`
	PendingOrders         int                `json:"pending_orders"`
	CompletedOrders       int                `json:"completed_orders"`
	LifetimeEarnings      float64            `json:"lifetime_earnings"`
	MostSoldCrop          *BestSeller        `json:"most_sold_crop"`
	RevenueByType         map[string]float64 `json:"revenue_by_type"`
	GeneratedAt           time.Time          `json:"generated_at"`
}

func (s Snapshot) Series(mode ViewMode) Series {
	if mode == ViewWeekly {
		return s.Weekly
	}
	return s.Monthly
}

// Growth returns the percentage change from previous to current rounded to
// one decimal. A zero previous value yields 100 when current is positive and
// 0 otherwise.
func Growth(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	cur := decimal.NewFromFloat(current)
	prev := decimal.NewFromFloat(previous)
	return cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}

// Aggregate builds the snapshot for the given farmer orders. crops resolves
// item crop IDs to their current type for the revenue breakdown.
func Aggregate(list []orders.FarmerOrder, crops map[string]model.Crop, now time.Time) Snapshot {
	monthEarn := make([]decimal.Decimal, 12)
	monthOrders := make([]int, 12)
	dayEarn := make([]decimal.Decimal, 7)
	dayOrders := make([]int, 7)

	today := startOfDay(now)
	firstDay := today.AddDate(0, 0, -6)

	lifetime := decimal.Zero
	byType := map[string]decimal.Decimal{}
	var pending, completed int

	for _, o := range list {
		base := decimal.NewFromFloat(o.BasePrice)
		lifetime = lifetime.Add(base)

		if orders.IsCompleted(o.Order(), now) {
			completed++
		} else {
			pending++
		}

		// Months are bucketed without the year: every January lands in the same slot.
		created := o.CreatedAt.In(now.Location())
		m := int(created.Month()) - 1
		monthEarn[m] = monthEarn[m].Add(base)
		monthOrders[m]++

		day := startOfDay(created)
		if !day.Before(firstDay) && !day.After(today) {
			idx := daysBetween(firstDay, day)
			dayEarn[idx] = dayEarn[idx].Add(base)
			dayOrders[idx]++
		}

		for _, item := range o.Items {
			typ := OtherType
			if c, ok := crops[item.CropID]; ok && c.Type != "" {
				typ = c.Type
			}
			byType[typ] = byType[typ].Add(orders.LineTotal(item))
		}
	}

	cur := int(now.Month()) - 1
	prev := (cur + 11) % 12

	monthly := Series{
		Labels:   monthLabels[:],
		Earnings: toFloats(monthEarn),
		Orders:   monthOrders,
	}
	monthly.EarningsGrowth = Growth(monthly.Earnings[cur], monthly.Earnings[prev])
	monthly.OrdersGrowth = Growth(float64(monthOrders[cur]), float64(monthOrders[prev]))

	weekly := Series{
		Labels:   dayLabels(firstDay),
		Earnings: toFloats(dayEarn),
		Orders:   dayOrders,
	}
	weekly.EarningsGrowth = Growth(weekly.Earnings[6], weekly.Earnings[5])
	weekly.OrdersGrowth = Growth(float64(dayOrders[6]), float64(dayOrders[5]))

	revenue := make(map[string]float64, len(byType))
	for k, v := range byType {
		revenue[k] = v.Round(2).InexactFloat64()
	}

	return Snapshot{
		Monthly:               monthly,
		Weekly:                weekly,
		CurrentMonthEarnings:  monthly.Earnings[cur],
		CurrentMonthOrders:    monthOrders[cur],
		PreviousMonthEarnings: monthly.Earnings[prev],
		PreviousMonthOrders:   monthOrders[prev],
		TotalOrders:           len(list),
		PendingOrders:         pending,
		CompletedOrders:       completed,
		LifetimeEarnings:      lifetime.Round(2).InexactFloat64(),
		MostSoldCrop:          MostSold(list),
		RevenueByType:         revenue,
		GeneratedAt:           now,
	}
}

// MostSold returns the crop name with the highest summed quantity. On a tie
// the crop encountered first in list order wins. Nil when nothing was sold.
func MostSold(list []orders.FarmerOrder) *BestSeller {
	totals := map[string]int{}
	var names []string
	for _, o := range list {
		for _, item := range o.Items {
			if _, seen := totals[item.Name]; !seen {
				names = append(names, item.Name)
			}
			totals[item.Name] += orders.Quantity(item)
		}
	}

	var best *BestSeller
	for _, name := range names {
		if best == nil || totals[name] > best.TotalSold {
			best = &BestSeller{Name: name, TotalSold: totals[name]}
		}
	}
	if best == nil || best.TotalSold == 0 {
		return nil
	}
	return best
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days, immune to DST-length days.
func daysBetween(from, to time.Time) int {
	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

func dayLabels(first time.Time) []string {
	labels := make([]string, 7)
	for i := range labels {
		labels[i] = first.AddDate(0, 0, i).Format("Mon 02")
	}
	return labels
}

func toFloats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.Round(2).InexactFloat64()
	}
	return out
}
