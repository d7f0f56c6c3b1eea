package campaign

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/insert-planner/internal/booking"
	"github.com/ignite/insert-planner/internal/domain"
	"github.com/ignite/insert-planner/internal/stage"
)

// Service implements the campaign wizard's business logic. Every mutation
// writes through the repository, invalidates cached wizard state, and
// re-resolves the wizard step so the frontend jumps to wherever the
// persisted record actually is. All public methods are safe for concurrent
// use if the underlying repository is.
type Service struct {
	repo  Repository
	cache Invalidator
}

// NewService creates a campaign service backed by the given repository.
// cache may be nil when no wizard cache is configured.
func NewService(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// CreateInput holds the fields for creating a new campaign.
type CreateInput struct {
	Name        string `json:"name"`
	Advertiser  string `json:"advertiser"`
	PrintFormat string `json:"print_format"`
}

// Create validates and persists a new campaign in the draft stage.
func (s *Service) Create(ctx context.Context, orgID string, input CreateInput) (*domain.Campaign, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.Advertiser == "" {
		return nil, fmt.Errorf("advertiser is required")
	}

	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Name:           input.Name,
		Advertiser:     input.Advertiser,
		PrintFormat:    input.PrintFormat,
		CurrentStage:   domain.StageDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Get returns a single campaign.
func (s *Service) Get(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	return s.repo.Get(ctx, orgID, id)
}

// List returns campaigns matching the filter.
func (s *Service) List(ctx context.Context, orgID string, f ListFilter) ([]domain.Campaign, int, error) {
	return s.repo.List(ctx, orgID, f)
}

// UpdateDetails modifies the setup-step fields of a campaign. Changing the
// print format invalidates any print-price tiers the frontend derived.
func (s *Service) UpdateDetails(ctx context.Context, orgID, id string, input CreateInput) (*domain.Campaign, error) {
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		if input.Name != "" {
			c.Name = input.Name
		}
		if input.Advertiser != "" {
			c.Advertiser = input.Advertiser
		}
		if input.PrintFormat != "" {
			c.PrintFormat = input.PrintFormat
		}
		return nil
	})
}

// Delete removes a campaign and its cached wizard state.
func (s *Service) Delete(ctx context.Context, orgID, id string) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// SetSelfDeclaredCategory records the advertiser's own category claim and
// moves the campaign into verification.
func (s *Service) SetSelfDeclaredCategory(ctx context.Context, orgID, id, category string) (*domain.Campaign, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("category is required")
	}
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		c.Category.SelfDeclaredCategory = &category
		c.Category.AIPredictedCategoryID = nil
		c.Category.ConfirmedCategoryID = nil
		c.Category.ReviewStatus = nil
		c.Category.PredictedCategoryAccept = nil
		c.CurrentStage = domain.StageCategoryVerification
		return nil
	})
}

// RecordPrediction stores the classifier's verdict. When the prediction
// agrees with the self-declared category it is confirmed on the spot;
// otherwise the campaign lands on the mismatch step.
func (s *Service) RecordPrediction(ctx context.Context, orgID, id, categoryID string, confidence float64) (*domain.Campaign, error) {
	if categoryID == "" {
		return nil, fmt.Errorf("predicted category id is required")
	}
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		c.Category.AIPredictedCategoryID = &categoryID
		c.Category.PredictionConfidence = confidence
		if domain.CategoryValuePresent(c.Category.SelfDeclaredCategory) &&
			*c.Category.SelfDeclaredCategory == categoryID {
			c.Category.ConfirmedCategoryID = &categoryID
		}
		return nil
	})
}

// AcceptPredictedCategory confirms the classifier's category over the
// self-declared one.
func (s *Service) AcceptPredictedCategory(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		if !domain.CategoryValuePresent(c.Category.AIPredictedCategoryID) {
			return ErrNoPrediction
		}
		accepted := true
		c.Category.ConfirmedCategoryID = c.Category.AIPredictedCategoryID
		c.Category.PredictedCategoryAccept = &accepted
		c.CurrentStage = domain.StageProgramSelection
		return nil
	})
}

// RequestManualReview flags the category mismatch for a human reviewer.
// The campaign stays on the mismatch step until the review lands.
func (s *Service) RequestManualReview(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		pending := "pending"
		c.Category.ReviewStatus = &pending
		c.CurrentStage = domain.StageCategoryAssignment
		return nil
	})
}

// ConfirmCategory sets the final category (self-declared or reviewer's
// pick) and opens program selection.
func (s *Service) ConfirmCategory(ctx context.Context, orgID, id, categoryID string) (*domain.Campaign, error) {
	if categoryID == "" || categoryID == "None" {
		return nil, fmt.Errorf("category id is required")
	}
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		c.Category.ConfirmedCategoryID = &categoryID
		c.Category.ReviewStatus = nil
		c.CurrentStage = domain.StageProgramSelection
		return nil
	})
}

// SelectPrograms replaces the campaign's program picks and moves it into
// availability planning. Bookings for dropped programs are discarded.
func (s *Service) SelectPrograms(ctx context.Context, orgID, id string, programs []domain.SelectedProgram) (*domain.Campaign, error) {
	if len(programs) == 0 {
		return nil, ErrNoPrograms
	}
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		if !domain.CategoryValuePresent(c.Category.ConfirmedCategoryID) {
			return ErrNoCategory
		}
		c.Programs = programs
		keep := make(map[string]bool, len(programs))
		for _, p := range programs {
			keep[p.ChannelID] = true
		}
		var kept []domain.Booking
		for _, b := range c.Bookings {
			if keep[b.ChannelID] {
				kept = append(kept, b)
			}
		}
		c.Bookings = kept
		c.CurrentStage = domain.StageAvailabilityPlanning
		return nil
	})
}

// ResetPrograms clears program picks and bookings, sending the user back
// to program selection.
func (s *Service) ResetPrograms(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		c.Programs = nil
		c.Bookings = nil
		c.CurrentStage = domain.StageProgramSelection
		return nil
	})
}

// BookingInput is one raw grid cell from the availability-planning step.
type BookingInput struct {
	ChannelID string `json:"channel_id"`
	Month     string `json:"month"`
	RawText   string `json:"raw_text"`
}

// SaveBookings validates every entered quantity against the current
// availability ceilings and persists the grid only when all entries pass.
// The returned bookings carry per-entry error messages either way, so the
// frontend can redisplay invalid cells inline.
func (s *Service) SaveBookings(ctx context.Context, orgID, id string, inputs []BookingInput, programs []domain.AvailabilityProgram) ([]domain.Booking, error) {
	ceilings := make(map[string]*domain.AvailabilityProgram, len(programs))
	for i := range programs {
		ceilings[programs[i].ChannelID] = &programs[i]
	}

	var (
		bookings []domain.Booking
		invalid  bool
	)
	for _, in := range inputs {
		month := strings.ToLower(strings.TrimSpace(in.Month))
		b := domain.Booking{ChannelID: in.ChannelID, Month: month, RawText: in.RawText}

		p, ok := ceilings[in.ChannelID]
		if !ok {
			b.Error = "Program is not part of this campaign"
			invalid = true
			bookings = append(bookings, b)
			continue
		}
		res := booking.Validate(in.RawText, p.AvailableUnits(month))
		if !res.Valid {
			b.Error = res.Error
			invalid = true
		} else {
			b.Quantity = res.Quantity
		}
		bookings = append(bookings, b)
	}

	if invalid {
		return bookings, ErrInvalidBookings
	}

	_, err := s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		c.Bookings = bookings
		c.CurrentStage = domain.StageAvailabilityPlanning
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// RecordAgreement stores the storage key of a generated agreement document.
func (s *Service) RecordAgreement(ctx context.Context, orgID, id, key string) (*domain.Campaign, error) {
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		c.AgreementKey = key
		c.CurrentStage = domain.StageAgreement
		return nil
	})
}

// RecordPayment stores the payment reference and closes out the wizard.
func (s *Service) RecordPayment(ctx context.Context, orgID, id, ref string) (*domain.Campaign, error) {
	return s.mutate(ctx, orgID, id, func(c *domain.Campaign) error {
		c.PaymentRef = ref
		c.CurrentStage = domain.StageBooked
		return nil
	})
}

// CurrentStep resolves the wizard step for a campaign. requested is the
// caller's explicit step hint (query parameter), honored only when stage
// resolution falls through to the default.
func (s *Service) CurrentStep(c *domain.Campaign, requested int) int {
	return stage.Resolve(c.StageContext(), requested)
}

// mutate loads, applies, persists and invalidates in one place so every
// wizard mutation behaves identically.
func (s *Service) mutate(ctx context.Context, orgID, id string, apply func(*domain.Campaign) error) (*domain.Campaign, error) {
	c, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	s.invalidate(ctx, id)
	return c, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Printf("[campaign.Service] cache invalidation for %s failed: %v", id, err)
	}
}
