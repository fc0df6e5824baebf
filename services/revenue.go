package services

import (
	"sort"
	"time"

	"github.com/anjiri1684/tuition_marketplace/models"
)

// TotalEarnings sums completed payments.
func TotalEarnings(records []models.PaymentRecord) float64 {
	var total float64
	for _, r := range records {
		if r.Status == models.PaymentCompleted {
			total += r.Amount
		}
	}
	return total
}

// MonthlyEarnings sums completed payments dated in the given calendar month (UTC).
func MonthlyEarnings(records []models.PaymentRecord, year int, month time.Month) float64 {
	var total float64
	for _, r := range records {
		if r.Status != models.PaymentCompleted {
			continue
		}
		d := r.PaymentDate.UTC()
		if d.Year() == year && d.Month() == month {
			total += r.Amount
		}
	}
	return total
}

// GrowthPercent is the month-over-month change. It is 0 when lastMonth is 0.
func GrowthPercent(thisMonth, lastMonth float64) float64 {
	if lastMonth == 0 {
		return 0
	}
	return (thisMonth - lastMonth) / lastMonth * 100
}

func AveragePerTransaction(records []models.PaymentRecord) float64 {
	var (
		total float64
		count int
	)
	for _, r := range records {
		if r.Status == models.PaymentCompleted {
			total += r.Amount
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

type MonthlyTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// MonthlyBreakdown groups completed payments by YYYY-MM, oldest first.
func MonthlyBreakdown(records []models.PaymentRecord) []MonthlyTotal {
	totals := map[string]float64{}
	for _, r := range records {
		if r.Status == models.PaymentCompleted {
			totals[r.PaymentDate.UTC().Format("2006-01")] += r.Amount
		}
	}
	out := make([]MonthlyTotal, 0, len(totals))
	for month, total := range totals {
		out = append(out, MonthlyTotal{Month: month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

type RevenueSummary struct {
	TotalEarnings         float64        `json:"total_earnings"`
	ThisMonth             float64        `json:"this_month"`
	LastMonth             float64        `json:"last_month"`
	GrowthPercent         float64        `json:"growth_percent"`
	AveragePerTransaction float64        `json:"average_per_transaction"`
	CompletedCount        int            `json:"completed_count"`
	Monthly               []MonthlyTotal `json:"monthly"`
}

// Summarize computes every rollup relative to the month containing now.
func Summarize(records []models.PaymentRecord, now time.Time) RevenueSummary {
	now = now.UTC()
	thisYear, thisMonth := now.Year(), now.Month()
	prev := time.Date(thisYear, thisMonth, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)

	sum := RevenueSummary{
		TotalEarnings:         TotalEarnings(records),
		ThisMonth:             MonthlyEarnings(records, thisYear, thisMonth),
		LastMonth:             MonthlyEarnings(records, prev.Year(), prev.Month()),
		AveragePerTransaction: AveragePerTransaction(records),
		Monthly:               MonthlyBreakdown(records),
	}
	sum.GrowthPercent = GrowthPercent(sum.ThisMonth, sum.LastMonth)
	for _, r := range records {
		if r.Status == models.PaymentCompleted {
			sum.CompletedCount++
		}
	}
	return sum
}
