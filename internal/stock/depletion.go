// Package stock implements the batch depletion planner. It is pure
// logic over an in-memory batch list; callers apply the resulting
// draws inside their own database transaction.
package stock

import (
	"sort"
	"time"

	"padaria-backend/internal/apperr"
)

// Batch is the planner's view of one storage lot.
type Batch struct {
	ID        string
	Validity  *time.Time // nil = no expiry
	Quantity  float64
	CreatedAt time.Time
}

// Draw records how much one depletion takes from one batch.
type Draw struct {
	BatchID  string
	Quantity float64
}

// Total sums the quantity on hand across all batches.
func Total(batches []Batch) float64 {
	total := 0.0
	for _, b := range batches {
		total += b.Quantity
	}
	return total
}

// Plan spreads the requested quantity across the batches,
// earliest-expiring first. Ordering rule: validity ascending, batches
// without a validity last (they never spoil, so dated stock goes
// first), ties broken by creation time, oldest first.
//
// The total on hand is checked before anything is planned: when it
// cannot cover the request, or when there are no batches at all, the
// call fails with an insufficient-stock error and no draw is produced.
// A batch fully consumed by a draw goes to zero; deleting it is the
// caller's explicit decision, never the planner's.
func Plan(batches []Batch, requested float64) ([]Draw, error) {
	if requested <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}
	if Total(batches) < requested {
		return nil, apperr.InsufficientStock("not enough product in stock")
	}

	ordered := make([]Batch, len(batches))
	copy(ordered, batches)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.Validity == nil && b.Validity == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.Validity == nil:
			return false
		case b.Validity == nil:
			return true
		case a.Validity.Equal(*b.Validity):
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.Validity.Before(*b.Validity)
		}
	})

	remaining := requested
	draws := make([]Draw, 0, len(ordered))
	for _, b := range ordered {
		if remaining <= 0 {
			break
		}
		if b.Quantity <= 0 {
			continue
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		draws = append(draws, Draw{BatchID: b.ID, Quantity: take})
		remaining -= take
	}

	return draws, nil
}
