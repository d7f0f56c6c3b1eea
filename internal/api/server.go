// Package api exposes the wizard backend over HTTP. Handlers stay thin:
// they parse, call a service or client, and render JSON. Pricing and stage
// logic live in their own packages.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/insert-planner/internal/agreement"
	"github.com/ignite/insert-planner/internal/artfiles"
	"github.com/ignite/insert-planner/internal/cache"
	"github.com/ignite/insert-planner/internal/catalog"
	"github.com/ignite/insert-planner/internal/classifier"
	"github.com/ignite/insert-planner/internal/service/campaign"
)

// Server bundles the wizard's dependencies behind one router.
type Server struct {
	campaigns       *campaign.Service
	catalog         *catalog.Client
	classifier      *classifier.Client
	store           *cache.Store
	art             *artfiles.Store
	agreements      *agreement.Renderer
	agreementSource string
}

// NewServer wires the wizard API. store and art may be nil in reduced
// deployments; the endpoints that need them respond 503.
func NewServer(
	campaigns *campaign.Service,
	catalogClient *catalog.Client,
	classifierClient *classifier.Client,
	store *cache.Store,
	art *artfiles.Store,
) *Server {
	return &Server{
		campaigns:  campaigns,
		catalog:    catalogClient,
		classifier: classifierClient,
		store:      store,
		art:        art,
		agreements: agreement.NewRenderer(),
	}
}

// SetAgreementTemplate overrides the built-in agreement document with a
// deployment-supplied Liquid template source.
func (s *Server) SetAgreementTemplate(source string) {
	s.agreementSource = source
}

// Router builds the chi router with CORS for the browser frontend.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Organization-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleListCategories)
		r.Get("/print-types", s.handleListPrintTypes)
		r.Post("/bookings/validate", s.handleValidateBooking)

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", s.handleListCampaigns)
			r.Post("/", s.handleCreateCampaign)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetCampaign)
				r.Put("/", s.handleUpdateCampaign)
				r.Delete("/", s.handleDeleteCampaign)

				r.Put("/category", s.handleSetCategory)
				r.Post("/category/accept", s.handleAcceptPrediction)
				r.Post("/category/review", s.handleRequestReview)
				r.Post("/category/confirm", s.handleConfirmCategory)
				r.Post("/classify", s.handleClassify)

				r.Post("/programs", s.handleSelectPrograms)
				r.Delete("/programs", s.handleResetPrograms)
				r.Post("/availability", s.handleAvailabilityReport)
				r.Put("/bookings", s.handleSaveBookings)

				r.Post("/art", s.handleUploadArt)
				r.Get("/art", s.handleListArt)
				r.Delete("/art/{key}", s.handleDeleteArt)

				r.Get("/agreement", s.handleAgreement)
				r.Post("/payment", s.handlePayment)
			})
		})
	})

	return r
}

// orgID extracts the caller's organization. Authentication happens
// upstream; this server only scopes queries by the forwarded org header.
func orgID(r *http.Request) string {
	return r.Header.Get("X-Organization-ID")
}

// requestedStep reads the explicit step hint forwarded from the wizard URL.
func requestedStep(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("step"))
	if err != nil {
		return 0
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case err == campaign.ErrNotFound:
		respondError(w, http.StatusNotFound, err.Error())
	case err == campaign.ErrNoCategory, err == campaign.ErrNoPrediction,
		err == campaign.ErrNoPrograms:
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}
