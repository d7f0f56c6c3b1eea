package domain

import (
	"time"
)

// CampaignStage enumerates the persisted wizard stages of a campaign.
// The stage is what the backend last recorded; the step a returning user
// actually sees is derived from it (plus category state) by the stage
// resolver, not read back verbatim.
type CampaignStage string

const (
	StageDraft                CampaignStage = "draft"
	StageCategorySelection    CampaignStage = "category_selection"
	StageCategoryVerification CampaignStage = "category_verification"
	StageCategoryAssignment   CampaignStage = "category_assignment"
	StageProgramSelection     CampaignStage = "program_selection"
	// StageProgramsSelection is a legacy spelling still present in older
	// campaign rows. Treated identically to StageProgramSelection.
	StageProgramsSelection    CampaignStage = "programs_selection"
	StageAvailabilityPlanning CampaignStage = "availability_planning"
	StageArtwork              CampaignStage = "artwork"
	StageAgreement            CampaignStage = "agreement"
	StagePayment              CampaignStage = "payment"
	StageBooked               CampaignStage = "booked"
)

// Wizard step numbers rendered by the frontend.
const (
	StepCampaignSetup     = 1
	StepCategorySelection = 2
	StepClassification    = 3
	StepCategoryMismatch  = 4
	StepProgramSelection  = 5
	StepAvailabilityPlan  = 6

	StepMin = StepCampaignSetup
	StepMax = StepAvailabilityPlan
)

// CategoryState is the category sub-object of a campaign. Fields are
// pointers because the remote record distinguishes "never set" from set:
// the stage resolver treats nil, "" and the literal "None" as absent.
type CategoryState struct {
	SelfDeclaredCategory    *string `json:"self_declared_category,omitempty"`
	AIPredictedCategoryID   *string `json:"ai_predicted_category_id,omitempty"`
	ConfirmedCategoryID     *string `json:"confirmed_category_id,omitempty"`
	ReviewStatus            *string `json:"review_status,omitempty"`
	ManualCategoryReview    *string `json:"manual_category_review,omitempty"`
	PredictedCategoryAccept *bool   `json:"predicted_category_accepted,omitempty"`
	PredictionConfidence    float64 `json:"prediction_confidence,omitempty"`
}

// CategoryValuePresent reports whether a category-ish field holds a real
// value. The remote API uses the literal string "None" for cleared fields.
func CategoryValuePresent(v *string) bool {
	return v != nil && *v != "" && *v != "None"
}

// SelectedProgram is one program the user picked for availability planning.
type SelectedProgram struct {
	ChannelID   string `json:"channel_id"`
	ProgramName string `json:"program_name,omitempty"`
}

// Booking is a validated per-program per-month quantity. RawText preserves
// what the user typed so an in-progress invalid value redisplays as-is.
type Booking struct {
	ChannelID string `json:"channel_id"`
	Month     string `json:"month"`
	Quantity  *int   `json:"quantity"`
	RawText   string `json:"raw_text,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Campaign is a print-insert advertising campaign moving through the wizard.
type Campaign struct {
	ID             string            `json:"id" db:"id"`
	OrganizationID string            `json:"organization_id" db:"organization_id"`
	Name           string            `json:"name" db:"name"`
	Advertiser     string            `json:"advertiser" db:"advertiser"`
	CurrentStage   CampaignStage     `json:"current_stage" db:"current_stage"`
	Category       CategoryState     `json:"category" db:"category"`
	PrintFormat    string            `json:"print_format" db:"print_format"`
	Programs       []SelectedProgram `json:"programs" db:"programs"`
	Bookings       []Booking         `json:"bookings" db:"bookings"`
	AgreementKey   string            `json:"agreement_key,omitempty" db:"agreement_key"`
	PaymentRef     string            `json:"payment_ref,omitempty" db:"payment_ref"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StageContext is the read-only slice of a campaign the stage resolver
// consumes. It is never mutated by resolution.
type StageContext struct {
	CurrentStage CampaignStage
	Category     CategoryState
	Programs     []SelectedProgram
}

// StageContext extracts the resolver input from a campaign.
func (c *Campaign) StageContext() StageContext {
	return StageContext{
		CurrentStage: c.CurrentStage,
		Category:     c.Category,
		Programs:     c.Programs,
	}
}

// HasPrograms reports whether any program has been selected.
func (c *Campaign) HasPrograms() bool { return len(c.Programs) > 0 }

// Category is one entry from the remote category catalog.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PrintType is one insert-print format from the remote catalog.
type PrintType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
