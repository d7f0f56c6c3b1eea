package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/insert-planner/internal/catalog"
	"github.com/ignite/insert-planner/internal/classifier"
	"github.com/ignite/insert-planner/internal/domain"
	"github.com/ignite/insert-planner/internal/service/campaign"
)

const testOrg = "org-1"

// memRepo is an in-memory campaign repository for handler tests.
type memRepo struct {
	mu        sync.Mutex
	campaigns map[string]*domain.Campaign
}

func newMemRepo() *memRepo {
	return &memRepo{campaigns: make(map[string]*domain.Campaign)}
}

func (m *memRepo) Get(_ context.Context, orgID, id string) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.OrganizationID != orgID {
		return nil, campaign.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, orgID string, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Campaign
	for _, c := range m.campaigns {
		if c.OrganizationID != orgID {
			continue
		}
		if f.Stage != "" && string(c.CurrentStage) != f.Stage {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Campaign) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		return "", fmt.Errorf("id required")
	}
	cp := *c
	m.campaigns[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memRepo) Update(_ context.Context, c *domain.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.campaigns[c.ID]
	if !ok || cur.OrganizationID != c.OrganizationID {
		return campaign.ErrNotFound
	}
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.OrganizationID != orgID {
		return campaign.ErrNotFound
	}
	delete(m.campaigns, id)
	return nil
}

func (m *memRepo) seed(c domain.Campaign) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := c
	m.campaigns[c.ID] = &cp
}

// newTestServer wires a handler stack around the in-memory repo and the
// given catalog fake. The cache and art store are left off.
func newTestServer(repo *memRepo, catalogURL string) http.Handler {
	svc := campaign.NewService(repo, nil)
	cat := catalog.NewClient(catalog.Config{BaseURL: catalogURL, APIKey: "test-key"})
	cls := classifier.NewClient(classifier.Config{BaseURL: catalogURL, APIKey: "test-key"})
	return NewServer(svc, cat, cls, nil, nil).Router(nil)
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Organization-ID", testOrg)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetCampaign(t *testing.T) {
	repo := newMemRepo()
	h := newTestServer(repo, "http://catalog.invalid")

	rec := doRequest(t, h, http.MethodPost, "/api/campaigns/",
		`{"name":"Fall Inserts","advertiser":"Acme Foods","print_format":"glossy_4x6"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Campaign domain.Campaign `json:"campaign"`
		Step     int             `json:"step"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Campaign.ID)
	assert.Equal(t, domain.StageDraft, created.Campaign.CurrentStage)
	assert.Equal(t, domain.StepCampaignSetup, created.Step)

	rec = doRequest(t, h, http.MethodGet, "/api/campaigns/"+created.Campaign.ID+"/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched struct {
		Campaign domain.Campaign `json:"campaign"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "Fall Inserts", fetched.Campaign.Name)
}

func TestCreateCampaign_MissingOrg(t *testing.T) {
	h := newTestServer(newMemRepo(), "http://catalog.invalid")

	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/",
		strings.NewReader(`{"name":"x","advertiser":"y"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCampaign_NotFound(t *testing.T) {
	h := newTestServer(newMemRepo(), "http://catalog.invalid")

	rec := doRequest(t, h, http.MethodGet, "/api/campaigns/missing/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCampaign_StepHint(t *testing.T) {
	repo := newMemRepo()
	repo.seed(domain.Campaign{
		ID:             "c-1",
		OrganizationID: testOrg,
		Name:           "Seeded",
		Advertiser:     "Acme",
		CurrentStage:   domain.StageDraft,
	})
	h := newTestServer(repo, "http://catalog.invalid")

	// A draft matches no stage rule; the resolver honors the URL hint.
	rec := doRequest(t, h, http.MethodGet, "/api/campaigns/c-1/?step=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Step int `json:"step"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Step)
}

func TestValidateBookingEndpoint(t *testing.T) {
	h := newTestServer(newMemRepo(), "http://catalog.invalid")

	rec := doRequest(t, h, http.MethodPost, "/api/bookings/validate",
		`{"raw_text":"50,000","ceiling":100000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Valid    bool   `json:"valid"`
		Error    string `json:"error"`
		Quantity *int   `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	require.NotNil(t, result.Quantity)
	assert.Equal(t, 50000, *result.Quantity)

	rec = doRequest(t, h, http.MethodPost, "/api/bookings/validate",
		`{"raw_text":"30000","ceiling":100000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.Equal(t, "Must be in increments of 25,000", result.Error)
}

func TestListCategories_CatalogDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadRequest)
	}))
	defer backend.Close()

	h := newTestServer(newMemRepo(), backend.URL)
	rec := doRequest(t, h, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListCategories(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/categories", r.URL.Path)
		fmt.Fprint(w, `[{"id":"food","category":"Food & Beverage"},{"id":"auto","name":"Automotive"}]`)
	}))
	defer backend.Close()

	h := newTestServer(newMemRepo(), backend.URL)
	rec := doRequest(t, h, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cats []domain.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 2)
	assert.Equal(t, "Food & Beverage", cats[0].Name)
}

func TestAvailabilityReport(t *testing.T) {
	confirmed := "food"
	qty := 50000

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/availability":
			fmt.Fprint(w, `[{
				"channel_id": "ch-1",
				"program_name": "Valley Weekly",
				"metrics": {"media_rate": 20, "freight_50k_100k": 150.0},
				"availability": [{"month": "january", "available": 100000}]
			}]`)
		case strings.HasPrefix(r.URL.Path, "/v1/print-price-matrix/"):
			fmt.Fprint(w, `{"0": 0.05, "100000": 0.04}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	repo := newMemRepo()
	repo.seed(domain.Campaign{
		ID:             "c-1",
		OrganizationID: testOrg,
		Name:           "Seeded",
		Advertiser:     "Acme",
		PrintFormat:    "glossy_4x6",
		CurrentStage:   domain.StageAvailabilityPlanning,
		Category:       domain.CategoryState{ConfirmedCategoryID: &confirmed},
		Programs:       []domain.SelectedProgram{{ChannelID: "ch-1"}},
		Bookings: []domain.Booking{
			{ChannelID: "ch-1", Month: "january", Quantity: &qty, RawText: "50,000"},
		},
	})

	h := newTestServer(repo, backend.URL)
	rec := doRequest(t, h, http.MethodPost, "/api/campaigns/c-1/availability", "{}")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Programs []domain.AvailabilityProgram `json:"programs"`
		Report   struct {
			AggregateQuantity int     `json:"aggregate_quantity"`
			CampaignTotal     float64 `json:"campaign_total"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Programs, 1)
	assert.Equal(t, "ch-1", resp.Programs[0].ChannelID)
	assert.Equal(t, 50000, resp.Report.AggregateQuantity)
	// media (20/1000)*50000 + freight 150 + print 0.05*50000
	assert.InDelta(t, 1000+150+2500, resp.Report.CampaignTotal, 0.001)
}

func TestAgreement_CustomTemplate(t *testing.T) {
	confirmed := "food"
	qty := 50000

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/availability":
			fmt.Fprint(w, `[{
				"channel_id": "ch-1",
				"program_name": "Valley Weekly",
				"metrics": {"media_rate": 20, "freight_50k_100k": 150.0},
				"availability": [{"month": "january", "available": 100000}]
			}]`)
		case strings.HasPrefix(r.URL.Path, "/v1/print-price-matrix/"):
			fmt.Fprint(w, `{"0": 0.05, "100000": 0.04}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	repo := newMemRepo()
	repo.seed(domain.Campaign{
		ID:             "c-1",
		OrganizationID: testOrg,
		Name:           "Fall Inserts",
		Advertiser:     "Acme",
		PrintFormat:    "glossy_4x6",
		CurrentStage:   domain.StageAvailabilityPlanning,
		Category:       domain.CategoryState{ConfirmedCategoryID: &confirmed},
		Programs:       []domain.SelectedProgram{{ChannelID: "ch-1"}},
		Bookings: []domain.Booking{
			{ChannelID: "ch-1", Month: "january", Quantity: &qty, RawText: "50,000"},
		},
	})

	svc := campaign.NewService(repo, nil)
	cat := catalog.NewClient(catalog.Config{BaseURL: backend.URL, APIKey: "test-key"})
	cls := classifier.NewClient(classifier.Config{BaseURL: backend.URL, APIKey: "test-key"})
	srv := NewServer(svc, cat, cls, nil, nil)
	srv.SetAgreementTemplate(`<p>{{ campaign_name }} total {{ campaign_total | money }}</p>`)

	rec := doRequest(t, srv.Router(nil), http.MethodGet, "/api/campaigns/c-1/agreement", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// media (20/1000)*50000 + freight 150 + print 0.05*50000
	assert.Equal(t, "<p>Fall Inserts total $3,650.00</p>", rec.Body.String())
}

func TestAvailabilityReport_NoPrograms(t *testing.T) {
	repo := newMemRepo()
	confirmed := "food"
	repo.seed(domain.Campaign{
		ID:             "c-2",
		OrganizationID: testOrg,
		CurrentStage:   domain.StageProgramSelection,
		Category:       domain.CategoryState{ConfirmedCategoryID: &confirmed},
	})

	h := newTestServer(repo, "http://catalog.invalid")
	rec := doRequest(t, h, http.MethodPost, "/api/campaigns/c-2/availability", "{}")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
