package campaign

import (
	"context"

	"github.com/ignite/insert-planner/internal/domain"
)

// Repository defines the data access contract for campaigns.
// Implementations must be safe for concurrent use.
type Repository interface {
	// Get returns a single campaign. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, orgID, id string) (*domain.Campaign, error)

	// List returns campaigns matching the given filter, ordered by created_at DESC.
	List(ctx context.Context, orgID string, filter ListFilter) ([]domain.Campaign, int, error)

	// Create inserts a new campaign and returns its ID.
	Create(ctx context.Context, c *domain.Campaign) (string, error)

	// Update persists the full mutable state of a campaign (stage, category,
	// programs, bookings). The wizard always writes the whole record.
	Update(ctx context.Context, c *domain.Campaign) error

	// Delete removes a campaign.
	Delete(ctx context.Context, orgID, id string) error
}

// ListFilter controls pagination and filtering for campaign lists.
type ListFilter struct {
	Stage  string
	Search string
	Limit  int
	Offset int
}

// Invalidator drops any cached wizard state for a campaign. The service
// calls it after every mutation so a resumed wizard never renders stale
// cross-visit data.
type Invalidator interface {
	Invalidate(ctx context.Context, campaignID string) error
}
