package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/insert-planner/internal/domain"
	"github.com/ignite/insert-planner/internal/repository/postgres"
	"github.com/ignite/insert-planner/internal/service/campaign"
)

var campaignCols = []string{
	"id", "organization_id", "name", "advertiser", "current_stage", "print_format",
	"category", "programs", "bookings", "agreement_key", "payment_ref",
	"created_at", "updated_at",
}

func TestGet_DecodesJSONBState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM insert_campaigns")).
		WithArgs("camp-1", "org-1").
		WillReturnRows(sqlmock.NewRows(campaignCols).AddRow(
			"camp-1", "org-1", "Spring FSI", "Acme Foods", "availability_planning", "fsi-4page",
			[]byte(`{"self_declared_category":"cat-grocery","confirmed_category_id":"cat-grocery"}`),
			[]byte(`[{"channel_id":"ch-1","program_name":"Valley Weekly"}]`),
			[]byte(`[{"channel_id":"ch-1","month":"january","quantity":25000}]`),
			"", "", now, now,
		))

	repo := postgres.NewCampaignRepo(db)
	c, err := repo.Get(context.Background(), "org-1", "camp-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StageAvailabilityPlanning, c.CurrentStage)
	require.NotNil(t, c.Category.ConfirmedCategoryID)
	assert.Equal(t, "cat-grocery", *c.Category.ConfirmedCategoryID)
	require.Len(t, c.Programs, 1)
	assert.Equal(t, "ch-1", c.Programs[0].ChannelID)
	require.Len(t, c.Bookings, 1)
	require.NotNil(t, c.Bookings[0].Quantity)
	assert.Equal(t, 25000, *c.Bookings[0].Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM insert_campaigns")).
		WithArgs("missing", "org-1").
		WillReturnRows(sqlmock.NewRows(campaignCols))

	repo := postgres.NewCampaignRepo(db)
	_, err = repo.Get(context.Background(), "org-1", "missing")
	assert.ErrorIs(t, err, campaign.ErrNotFound)
}

func TestUpdate_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE insert_campaigns")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewCampaignRepo(db)
	err = repo.Update(context.Background(), &domain.Campaign{ID: "x", OrganizationID: "org-1"})
	assert.ErrorIs(t, err, campaign.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM insert_campaigns")).
		WithArgs("camp-1", "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewCampaignRepo(db)
	require.NoError(t, repo.Delete(context.Background(), "org-1", "camp-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_FiltersByStage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM insert_campaigns")).
		WithArgs("org-1", "draft").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM insert_campaigns")).
		WithArgs("org-1", "draft", 50, 0).
		WillReturnRows(sqlmock.NewRows(campaignCols).AddRow(
			"camp-1", "org-1", "Spring FSI", "Acme Foods", "draft", "",
			[]byte(`{}`), []byte(`[]`), []byte(`[]`), "", "", now, now,
		))

	repo := postgres.NewCampaignRepo(db)
	out, total, err := repo.List(context.Background(), "org-1", campaign.ListFilter{Stage: "draft"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, out, 1)
	assert.Equal(t, domain.StageDraft, out[0].CurrentStage)

	assert.NoError(t, mock.ExpectationsWereMet())
}
