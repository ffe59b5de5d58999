package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rl1809/parts-inventory/internal/core/domain"
	"github.com/rl1809/parts-inventory/internal/port"
)

// Lookup-then-write may race with another writer of the same key; each race
// costs one retry.
const maxReconcileAttempts = 3

var errReconcileContention = errors.New("part changed concurrently")

// InventoryReconciler applies change batches in order. Every change stands on its
// own: a skipped change never rolls back or aborts the others.
type InventoryReconciler struct {
	repo port.PartsRepository
}

func NewInventoryReconciler(repo port.PartsRepository) *InventoryReconciler {
	return &InventoryReconciler{repo: repo}
}

// Apply reconciles the batch. A storage error stops the batch and is returned with
// the outcomes recorded so far.
func (r *InventoryReconciler) Apply(ctx context.Context, batch domain.ChangeBatch) (domain.ReconciliationResult, error) {
	result := domain.ReconciliationResult{Outcomes: make([]domain.ChangeOutcome, 0, len(batch))}

	for i, change := range batch {
		outcome, err := r.applyOne(ctx, i, change)
		if err != nil {
			return result, fmt.Errorf("change %d: %w", i, err)
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Status != domain.OutcomeApplied {
			slog.WarnContext(ctx, "change skipped",
				"index", i,
				"status", outcome.Status,
				"manufacturer", change.Manufacturer,
				"part", change.Part,
				"model", change.Model,
				"quantity", change.Quantity,
				"action", change.Action,
				"reason", outcome.Message)
		}
	}
	return result, nil
}

func (r *InventoryReconciler) applyOne(ctx context.Context, index int, change domain.ChangeRequest) (domain.ChangeOutcome, error) {
	outcome := domain.ChangeOutcome{Index: index, Change: change}

	if err := validateChange(change); err != nil {
		outcome.Status = domain.OutcomeInvalid
		outcome.Message = err.Error()
		return outcome, nil
	}
	change.Action, _ = domain.ParseAction(string(change.Action))
	outcome.Change = change

	for attempt := 0; attempt < maxReconcileAttempts; attempt++ {
		existing, err := r.repo.FindByKey(ctx, change.Key())
		if err != nil {
			return outcome, fmt.Errorf("find part: %w", err)
		}

		if existing == nil {
			if change.Action == domain.ActionRemove {
				outcome.Status = domain.OutcomeUnknownPart
				outcome.Message = "part not found, nothing to remove"
				return outcome, nil
			}

			created, err := r.repo.Insert(ctx, domain.Part{
				Manufacturer: change.Manufacturer,
				Part:         change.Part,
				Model:        change.Model,
				Quantity:     change.Quantity,
			})
			if errors.Is(err, domain.ErrDuplicatePart) {
				continue
			}
			if err != nil {
				return outcome, fmt.Errorf("insert part: %w", err)
			}
			outcome.Status = domain.OutcomeApplied
			outcome.PartID = created.ID
			outcome.Quantity = created.Quantity
			return outcome, nil
		}

		quantity, ok, err := r.repo.AdjustQuantity(ctx, existing.ID, change.Delta())
		if errors.Is(err, domain.ErrPartNotFound) {
			continue
		}
		if err != nil {
			return outcome, fmt.Errorf("adjust quantity: %w", err)
		}

		outcome.PartID = existing.ID
		outcome.Quantity = quantity
		if !ok {
			outcome.Status = domain.OutcomeInsufficientStock
			outcome.Message = fmt.Sprintf("only %d in stock, cannot remove %d", quantity, change.Quantity)
			return outcome, nil
		}
		outcome.Status = domain.OutcomeApplied
		return outcome, nil
	}

	return outcome, errReconcileContention
}

func validateChange(change domain.ChangeRequest) error {
	if change.Invalid != "" {
		return fmt.Errorf("%w: %s", ErrMalformedChange, change.Invalid)
	}
	if _, ok := domain.ParseAction(string(change.Action)); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidAction, change.Action)
	}
	if change.Quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, change.Quantity)
	}
	return nil
}
