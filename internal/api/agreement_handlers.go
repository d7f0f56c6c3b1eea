package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/insert-planner/internal/agreement"
	"github.com/ignite/insert-planner/internal/cache"
	"github.com/ignite/insert-planner/internal/catalog"
)

func (s *Server) handleAgreement(w http.ResponseWriter, r *http.Request) {
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

	in := agreement.Input{
		Campaign: c,
		Report:   report,
		Now:      time.Now().UTC(),
	}
	var html string
	if s.agreementSource != "" {
		html, err = s.agreements.RenderTemplate(s.agreementSource, in)
	} else {
		html, err = s.agreements.Render(in)
	}
	if err != nil {
		log.Printf("[api] agreement render for %s failed: %v", c.ID, err)
		respondError(w, http.StatusInternalServerError, "agreement rendering failed")
		return
	}

	if s.art != nil {
		key, err := s.art.PutAgreement(r.Context(), c.ID, html)
		if err != nil {
			log.Printf("[api] agreement store for %s failed: %v", c.ID, err)
		} else if _, err := s.campaigns.RecordAgreement(r.Context(), orgID(r), c.ID, key); err != nil {
			log.Printf("[api] agreement record for %s failed: %v", c.ID, err)
		}
	}
	if s.store != nil {
		_ = s.store.Set(r.Context(), c.ID, cache.SectionAgreement, html)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method string `json:"method"`
		Token  string `json:"token"`
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
	report, err := s.priceReport(r, c, programs)
	if err != nil {
		respondError(w, http.StatusBadGateway, "print price service unavailable")
		return
	}

	receipt, err := s.catalog.SubmitPayment(r.Context(), catalog.PaymentRequest{
		CampaignID: c.ID,
		Amount:     report.CampaignTotal,
		Currency:   "USD",
		Method:     body.Method,
		Token:      body.Token,
	})
	if err != nil {
		// One-shot failure: no retry, the user re-submits.
		log.Printf("[api] payment for %s failed: %v", c.ID, err)
		respondError(w, http.StatusBadGateway, "payment processor unavailable")
		return
	}

	updated, err := s.campaigns.RecordPayment(r.Context(), orgID(r), c.ID, receipt.Reference)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if s.store != nil {
		_ = s.store.Set(r.Context(), c.ID, cache.SectionPayment, receipt)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"receipt":  receipt,
		"campaign": updated,
	})
}
