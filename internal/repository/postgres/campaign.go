// Package postgres implements the campaign repository against PostgreSQL.
// The wizard's nested state (category, programs, bookings) lives in JSONB
// columns; the hot filter fields (org, stage) are plain columns.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ignite/insert-planner/internal/domain"
	"github.com/ignite/insert-planner/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

const campaignColumns = `
	id, organization_id, name, advertiser, current_stage, print_format,
	category, programs, bookings,
	COALESCE(agreement_key,''), COALESCE(payment_ref,''),
	created_at, updated_at`

func (r *CampaignRepo) Get(ctx context.Context, orgID, id string) (*domain.Campaign, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM insert_campaigns
		WHERE id = $1 AND organization_id = $2
	`, id, orgID)

	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepo) List(ctx context.Context, orgID string, f campaign.ListFilter) ([]domain.Campaign, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	countQ := `SELECT COUNT(*) FROM insert_campaigns WHERE organization_id = $1`
	countArgs := []interface{}{orgID}
	if f.Stage != "" {
		countQ += ` AND current_stage = $2`
		countArgs = append(countArgs, f.Stage)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQ, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	q := `SELECT ` + campaignColumns + ` FROM insert_campaigns WHERE organization_id = $1`
	args := []interface{}{orgID}
	idx := 2
	if f.Stage != "" {
		q += fmt.Sprintf(" AND current_stage = $%d", idx)
		args = append(args, f.Stage)
		idx++
	}
	if f.Search != "" {
		q += fmt.Sprintf(" AND (name ILIKE $%d OR advertiser ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *CampaignRepo) Create(ctx context.Context, c *domain.Campaign) (string, error) {
	category, programs, bookings, err := marshalState(c)
	if err != nil {
		return "", err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO insert_campaigns
			(id, organization_id, name, advertiser, current_stage, print_format,
			 category, programs, bookings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, c.ID, c.OrganizationID, c.Name, c.Advertiser, c.CurrentStage, c.PrintFormat,
		category, programs, bookings, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("insert campaign: %w", err)
	}
	return c.ID, nil
}

func (r *CampaignRepo) Update(ctx context.Context, c *domain.Campaign) error {
	category, programs, bookings, err := marshalState(c)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE insert_campaigns
		SET name = $3, advertiser = $4, current_stage = $5, print_format = $6,
		    category = $7, programs = $8, bookings = $9,
		    agreement_key = NULLIF($10, ''), payment_ref = NULLIF($11, ''),
		    updated_at = $12
		WHERE id = $1 AND organization_id = $2
	`, c.ID, c.OrganizationID, c.Name, c.Advertiser, c.CurrentStage, c.PrintFormat,
		category, programs, bookings, c.AgreementKey, c.PaymentRef, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, orgID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM insert_campaigns WHERE id = $1 AND organization_id = $2
	`, id, orgID)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var (
		c        domain.Campaign
		category []byte
		programs []byte
		bookings []byte
	)
	err := row.Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.Advertiser, &c.CurrentStage, &c.PrintFormat,
		&category, &programs, &bookings,
		&c.AgreementKey, &c.PaymentRef,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(category) > 0 {
		if err := json.Unmarshal(category, &c.Category); err != nil {
			return nil, fmt.Errorf("decode category: %w", err)
		}
	}
	if len(programs) > 0 {
		if err := json.Unmarshal(programs, &c.Programs); err != nil {
			return nil, fmt.Errorf("decode programs: %w", err)
		}
	}
	if len(bookings) > 0 {
		if err := json.Unmarshal(bookings, &c.Bookings); err != nil {
			return nil, fmt.Errorf("decode bookings: %w", err)
		}
	}
	return &c, nil
}

func marshalState(c *domain.Campaign) (category, programs, bookings []byte, err error) {
	if category, err = json.Marshal(c.Category); err != nil {
		return nil, nil, nil, fmt.Errorf("encode category: %w", err)
	}
	if programs, err = json.Marshal(c.Programs); err != nil {
		return nil, nil, nil, fmt.Errorf("encode programs: %w", err)
	}
	if bookings, err = json.Marshal(c.Bookings); err != nil {
		return nil, nil, nil, fmt.Errorf("encode bookings: %w", err)
	}
	return category, programs, bookings, nil
}
