package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/insert-planner/internal/cache"
	"github.com/ignite/insert-planner/internal/domain"
)

// catalogCacheID scopes campaign-independent catalog data in the cache.
const catalogCacheID = "catalog"

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		var cached []domain.Category
		if err := s.store.Get(r.Context(), catalogCacheID, cache.SectionCategories, &cached); err == nil {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		log.Printf("[api] category fetch failed: %v", err)
		respondError(w, http.StatusBadGateway, "category service unavailable")
		return
	}
	if s.store != nil {
		_ = s.store.Set(r.Context(), catalogCacheID, cache.SectionCategories, cats)
	}
	respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleListPrintTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.catalog.PrintTypes(r.Context())
	if err != nil {
		log.Printf("[api] print-type fetch failed: %v", err)
		respondError(w, http.StatusBadGateway, "print-type service unavailable")
		return
	}
	respondJSON(w, http.StatusOK, types)
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.campaigns.SetSelfDeclaredCategory(r.Context(), orgID(r), chi.URLParam(r, "id"), body.Category)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.respondCampaign(w, r, http.StatusOK, c)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		ArtFileKey string `json:"art_file_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pred, err := s.classifier.Classify(r.Context(), id, body.ArtFileKey)
	if err != nil {
		log.Printf("[api] classification for %s failed: %v", id, err)
		respondError(w, http.StatusBadGateway, "classifier unavailable")
		return
	}

	c, err := s.campaigns.RecordPrediction(r.Context(), orgID(r), id, pred.CategoryID, pred.Confidence)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.respondCampaign(w, r, http.StatusOK, c)
}

func (s *Server) handleAcceptPrediction(w http.ResponseWriter, r *http.Request) {
	c, err := s.campaigns.AcceptPredictedCategory(r.Context(), orgID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.respondCampaign(w, r, http.StatusOK, c)
}

func (s *Server) handleRequestReview(w http.ResponseWriter, r *http.Request) {
	c, err := s.campaigns.RequestManualReview(r.Context(), orgID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.respondCampaign(w, r, http.StatusOK, c)
}

func (s *Server) handleConfirmCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CategoryID string `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.campaigns.ConfirmCategory(r.Context(), orgID(r), chi.URLParam(r, "id"), body.CategoryID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	s.respondCampaign(w, r, http.StatusOK, c)
}
