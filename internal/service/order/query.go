package order

import (
	"time"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

const defaultRecentDays = 7

// recentCutoff is the earliest creation time included in a window of days
// days; days <= 0 means seven.
func recentCutoff(days int, now time.Time) time.Time {
	if days <= 0 {
		days = defaultRecentDays
	}
	return now.AddDate(0, 0, -days)
}

// statisticsFromTotals reports every status, zero when absent, and sums the
// totals of orders that were not cancelled.
func statisticsFromTotals(totals []orderrepo.StatusTotal) domain.OrderStatistics {
	stats := domain.OrderStatistics{
		ByStatus: make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
	}
	for _, st := range domain.OrderStatuses {
		stats.ByStatus[st] = 0
	}
	for _, t := range totals {
		stats.TotalOrders += t.Count
		stats.ByStatus[t.Status] += t.Count
		if t.Status != domain.OrderStatusCancelled {
			stats.TotalRevenueCents += t.TotalCents
		}
	}
	return stats
}
