package port

import (
	"context"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

type PartsRepository interface {
	// FindByKey returns the part with the given natural key, or nil if none exists
	FindByKey(ctx context.Context, key domain.PartKey) (*domain.Part, error)

	// Insert creates a part and returns it with its assigned ID; domain.ErrDuplicatePart if the key exists
	Insert(ctx context.Context, part domain.Part) (domain.Part, error)

	// AdjustQuantity atomically adds delta to the stored quantity unless the result would be negative.
	// It returns the resulting (or unchanged current) quantity and whether the change was applied,
	// or domain.ErrPartNotFound when no row has the ID.
	AdjustQuantity(ctx context.Context, id int64, delta int) (int, bool, error)

	// Update overwrites every field of the part identified by part.ID; domain.ErrPartNotFound if absent
	Update(ctx context.Context, part domain.Part) error

	// List returns all parts ordered by ID
	List(ctx context.Context) ([]domain.Part, error)

	// Delete removes the parts with the given IDs; unknown IDs are ignored
	Delete(ctx context.Context, ids []int64) error
}
