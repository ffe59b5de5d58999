package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rl1809/parts-inventory/internal/core/domain"
	"github.com/rl1809/parts-inventory/internal/port"
)

const idempotencyKeyPrefix = "idempotency:execute:"

type InventoryService struct {
	repo       port.PartsRepository
	cache      port.CacheRepository
	reconciler *InventoryReconciler
}

func NewInventoryService(repo port.PartsRepository, cache port.CacheRepository) *InventoryService {
	return &InventoryService{
		repo:       repo,
		cache:      cache,
		reconciler: NewInventoryReconciler(repo),
	}
}

// ExecuteChanges reconciles the batch. A non-empty idempotency key makes repeated
// submissions fail with ErrDuplicateRequest; the key is released again when the
// batch hits a storage error so the client may retry.
func (s *InventoryService) ExecuteChanges(ctx context.Context, idempotencyKey string, batch domain.ChangeBatch) (domain.ReconciliationResult, error) {
	key := ""
	if idempotencyKey != "" {
		key = idempotencyKeyPrefix + idempotencyKey
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			return domain.ReconciliationResult{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return domain.ReconciliationResult{}, ErrDuplicateRequest
		}
	}

	result, err := s.reconciler.Apply(ctx, batch)
	if err != nil {
		if key != "" {
			if releaseErr := s.cache.ReleaseIdempotency(ctx, key); releaseErr != nil {
				slog.ErrorContext(ctx, "failed to release idempotency key", "key", key, "error", releaseErr)
			}
		}
		return result, fmt.Errorf("reconcile: %w", err)
	}

	slog.InfoContext(ctx, "changes executed",
		"total", len(batch),
		"applied", result.Count(domain.OutcomeApplied),
		"insufficient_stock", result.Count(domain.OutcomeInsufficientStock),
		"unknown_part", result.Count(domain.OutcomeUnknownPart),
		"invalid", result.Count(domain.OutcomeInvalid))
	return result, nil
}

func (s *InventoryService) ListParts(ctx context.Context) ([]domain.Part, error) {
	parts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	return parts, nil
}

func (s *InventoryService) UpdatePart(ctx context.Context, part domain.Part) error {
	if part.Quantity < 0 {
		return fmt.Errorf("%w: quantity %d is negative", ErrInvalidPart, part.Quantity)
	}
	if err := s.repo.Update(ctx, part); err != nil {
		return fmt.Errorf("update part %d: %w", part.ID, err)
	}
	return nil
}

func (s *InventoryService) DeleteParts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.Delete(ctx, ids); err != nil {
		return fmt.Errorf("delete parts: %w", err)
	}
	return nil
}
