// Package stage decides which wizard step to render for a persisted
// campaign. The decision is an ordered rule table evaluated first-match-
// wins, so adding a stage means adding a rule, not threading a new branch
// through nested conditionals.
//
// Resolution is pure and total: any campaign record, however malformed,
// resolves to a step in [1,6]. It must be re-run after every mutation that
// can touch the campaign record (category set, prediction accepted, manual
// review requested, programs reset) so the wizard jumps rather than
// trusting local UI state.
package stage

import "github.com/ignite/insert-planner/internal/domain"

type rule struct {
	name string
	when func(domain.StageContext) bool
	step int
}

// reviewValue is the campaign's review marker: review_status with
// manual_category_review as the legacy fallback field.
func reviewValue(c domain.StageContext) *string {
	if c.Category.ReviewStatus != nil {
		return c.Category.ReviewStatus
	}
	return c.Category.ManualCategoryReview
}

func reviewPresent(c domain.StageContext) bool {
	return domain.CategoryValuePresent(reviewValue(c))
}

func inCategoryStages(c domain.StageContext) bool {
	switch c.CurrentStage {
	case domain.StageCategoryVerification, domain.StageCategoryAssignment, domain.StageCategorySelection:
		return true
	}
	return false
}

func inProgramStages(c domain.StageContext) bool {
	return c.CurrentStage == domain.StageProgramSelection || c.CurrentStage == domain.StageProgramsSelection
}

// The table. Order matters: earlier rules shadow later ones, and two rules
// deliberately resolve the same step (the mismatch screen renders with
// different button states depending on which rule fired upstream).
var rules = []rule{
	{
		name: "assignment under review",
		when: func(c domain.StageContext) bool {
			return c.CurrentStage == domain.StageCategoryAssignment && reviewPresent(c)
		},
		step: domain.StepCategoryMismatch,
	},
	{
		name: "no self-declared category",
		when: func(c domain.StageContext) bool {
			return inCategoryStages(c) && !domain.CategoryValuePresent(c.Category.SelfDeclaredCategory)
		},
		step: domain.StepCategorySelection,
	},
	{
		name: "awaiting classification",
		when: func(c domain.StageContext) bool {
			return inCategoryStages(c) && !domain.CategoryValuePresent(c.Category.AIPredictedCategoryID)
		},
		step: domain.StepClassification,
	},
	{
		name: "category confirmed",
		when: func(c domain.StageContext) bool {
			return inCategoryStages(c) && domain.CategoryValuePresent(c.Category.ConfirmedCategoryID)
		},
		step: domain.StepProgramSelection,
	},
	{
		name: "mismatch, review not requested",
		when: func(c domain.StageContext) bool {
			return inCategoryStages(c) && !reviewPresent(c)
		},
		step: domain.StepCategoryMismatch,
	},
	{
		name: "mismatch, review pending",
		when: inCategoryStages,
		step: domain.StepCategoryMismatch,
	},
	{
		name: "programs with confirmed category",
		when: func(c domain.StageContext) bool {
			return inProgramStages(c) && domain.CategoryValuePresent(c.Category.ConfirmedCategoryID)
		},
		step: domain.StepProgramSelection,
	},
	// The next two rules currently resolve identically. They are kept
	// separate because the mismatch screen's button states differ, and an
	// upstream feature may yet split their destinations.
	{
		name: "predicted only, review recorded",
		when: func(c domain.StageContext) bool {
			return inProgramStages(c) &&
				domain.CategoryValuePresent(c.Category.AIPredictedCategoryID) && reviewPresent(c)
		},
		step: domain.StepCategoryMismatch,
	},
	{
		name: "predicted only, no review",
		when: func(c domain.StageContext) bool {
			return inProgramStages(c) && domain.CategoryValuePresent(c.Category.AIPredictedCategoryID)
		},
		step: domain.StepCategoryMismatch,
	},
	{
		name: "programs without prediction",
		when: inProgramStages,
		step: domain.StepClassification,
	},
	{
		name: "planning with no programs",
		when: func(c domain.StageContext) bool {
			return c.CurrentStage == domain.StageAvailabilityPlanning && len(c.Programs) == 0
		},
		step: domain.StepProgramSelection,
	},
	{
		name: "planning",
		when: func(c domain.StageContext) bool {
			return c.CurrentStage == domain.StageAvailabilityPlanning
		},
		step: domain.StepAvailabilityPlan,
	},
}

// Resolve maps a campaign record to a wizard step. An unknown or malformed
// stage falls back to the caller's requested step when it is within range,
// else step 1.
func Resolve(c domain.StageContext, requested int) int {
	for _, r := range rules {
		if r.when(c) {
			return r.step
		}
	}
	if requested >= domain.StepMin && requested <= domain.StepMax {
		return requested
	}
	return domain.StepCampaignSetup
}
