package view

import (
	"time"

	"github.com/luizfilipelima/app-restaurante-sistema-sub001/pkg/domain"
)

// Tier is how loudly a board cell should shout about an order's age.
type Tier string

const (
	TierFresh    Tier = "fresh"
	TierWarm     Tier = "warm"
	TierHot      Tier = "hot"
	TierCritical Tier = "critical"
)

const (
	warmAfter     = 120 * time.Second
	hotAfter      = 300 * time.Second
	criticalAfter = 600 * time.Second
)

// TierFor maps time spent in the current status to a tier. Boundaries
// are inclusive on the upper tier: 119s is fresh, 120s is warm.
func TierFor(elapsed time.Duration) Tier {
	switch {
	case elapsed < warmAfter:
		return TierFresh
	case elapsed < hotAfter:
		return TierWarm
	case elapsed < criticalAfter:
		return TierHot
	default:
		return TierCritical
	}
}

// EnteredAt resolves when the order entered its current status: the
// ledger entry for that status when one exists, otherwise updated_at
// (orders created before the ledger existed).
func EnteredAt(order domain.Order, history []domain.StatusEntry) time.Time {
	for _, entry := range history {
		if entry.Status == order.Status {
			return entry.RecordedAt
		}
	}
	return order.UpdatedAt
}

// Classify is the per-tick computation: pure in (now, enteredAt), so
// urgency keeps escalating with no network traffic at all.
func Classify(now, enteredAt time.Time) Tier {
	return TierFor(now.Sub(enteredAt))
}
