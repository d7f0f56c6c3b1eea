package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/insert-planner/internal/availability"
	"github.com/ignite/insert-planner/internal/booking"
	"github.com/ignite/insert-planner/internal/cache"
	"github.com/ignite/insert-planner/internal/catalog"
	"github.com/ignite/insert-planner/internal/domain"
	"github.com/ignite/insert-planner/internal/pricing"
	"github.com/ignite/insert-planner/internal/service/campaign"
)

func (s *Server) handleSelectPrograms(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Programs []domain.SelectedProgram `json:"programs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.campaigns.SelectPrograms(r.Context(), orgID(r), chi.URLParam(r, "id"), body.Programs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.respondCampaign(w, r, http.StatusOK, c)
}

func (s *Server) handleResetPrograms(w http.ResponseWriter, r *http.Request) {
	c, err := s.campaigns.ResetPrograms(r.Context(), orgID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.respondCampaign(w, r, http.StatusOK, c)
}

// availabilityReport is the step-6 payload: normalized programs plus the
// priced breakdown for whatever bookings exist so far.
type availabilityReport struct {
	Programs []domain.AvailabilityProgram `json:"programs"`
	Report   pricing.Report               `json:"report"`
}

func (s *Server) handleAvailabilityReport(w http.ResponseWriter, r *http.Request) {
	c, err := s.campaigns.Get(r.Context(), orgID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	programs, err := s.fetchPrograms(r, c)
	if err != nil {
		respondFetchError(w, c.ID, err)
		return
	}

	report, err := s.priceReport(r, c, programs)
	if err != nil {
		log.Printf("[api] pricing for %s failed: %v", c.ID, err)
		respondError(w, http.StatusBadGateway, "print price service unavailable")
		return
	}

	respondJSON(w, http.StatusOK, availabilityReport{Programs: programs, Report: report})
}

func (s *Server) handleSaveBookings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Bookings []campaign.BookingInput `json:"bookings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.campaigns.Get(r.Context(), orgID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	programs, err := s.fetchPrograms(r, c)
	if err != nil {
		respondFetchError(w, c.ID, err)
		return
	}

	saved, err := s.campaigns.SaveBookings(r.Context(), orgID(r), c.ID, body.Bookings, programs)
	if errors.Is(err, campaign.ErrInvalidBookings) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    err.Error(),
			"bookings": saved,
		})
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"bookings": saved})
}

// handleValidateBooking validates one grid cell as the user types.
func (s *Server) handleValidateBooking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RawText string `json:"raw_text"`
		Ceiling int    `json:"ceiling"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	respondJSON(w, http.StatusOK, booking.Validate(body.RawText, body.Ceiling))
}

// respondFetchError distinguishes wizard-state conflicts from an
// unreachable booking API.
func respondFetchError(w http.ResponseWriter, campaignID string, err error) {
	if errors.Is(err, campaign.ErrNoCategory) || errors.Is(err, campaign.ErrNoPrograms) {
		respondServiceError(w, err)
		return
	}
	log.Printf("[api] availability fetch for %s failed: %v", campaignID, err)
	respondError(w, http.StatusBadGateway, "availability service unavailable")
}

// fetchPrograms returns the campaign's normalized availability, from the
// wizard cache when fresh, else from the booking API.
func (s *Server) fetchPrograms(r *http.Request, c *domain.Campaign) ([]domain.AvailabilityProgram, error) {
	if !domain.CategoryValuePresent(c.Category.ConfirmedCategoryID) {
		return nil, campaign.ErrNoCategory
	}
	if len(c.Programs) == 0 {
		return nil, campaign.ErrNoPrograms
	}

	if s.store != nil {
		var cached []domain.AvailabilityProgram
		if err := s.store.Get(r.Context(), c.ID, cache.SectionAvailability, &cached); err == nil {
			return cached, nil
		}
	}

	channelIDs := make([]string, 0, len(c.Programs))
	for _, p := range c.Programs {
		channelIDs = append(channelIDs, p.ChannelID)
	}
	raw, err := s.catalog.Availability(r.Context(), catalog.AvailabilityRequest{
		ChannelIDs: channelIDs,
		CategoryID: *c.Category.ConfirmedCategoryID,
		CampaignID: c.ID,
	})
	if err != nil {
		return nil, err
	}

	programs := availability.NormalizeAll(raw)
	if s.store != nil {
		_ = s.store.Set(r.Context(), c.ID, cache.SectionAvailability, programs)
	}
	return programs, nil
}

// priceReport builds the priced report for a campaign's saved bookings.
func (s *Server) priceReport(r *http.Request, c *domain.Campaign, programs []domain.AvailabilityProgram) (pricing.Report, error) {
	if c.PrintFormat == "" {
		return pricing.Report{}, fmt.Errorf("campaign has no print format")
	}
	schedule, err := s.catalog.PrintPriceMatrix(r.Context(), c.PrintFormat)
	if err != nil {
		return pricing.Report{}, err
	}
	tiers := pricing.BuildPrintTiers(schedule)

	bookings := pricing.Bookings{}
	for _, b := range c.Bookings {
		if bookings[b.ChannelID] == nil {
			bookings[b.ChannelID] = map[string]*int{}
		}
		bookings[b.ChannelID][b.Month] = b.Quantity
	}

	return pricing.BuildReport(programs, bookings, tiers), nil
}
