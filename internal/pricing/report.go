package pricing

import "github.com/ignite/insert-planner/internal/domain"

// ProgramLine is the priced breakdown for one program in the report.
type ProgramLine struct {
	ChannelID          string  `json:"channel_id"`
	ProgramName        string  `json:"program_name"`
	TotalQuantity      int     `json:"total_quantity"`
	MediaCost          float64 `json:"media_cost"`
	PrintCost          float64 `json:"print_cost"`
	FreightCost        float64 `json:"freight_cost"`
	Total              float64 `json:"total"`
	DurationDisclaimer bool    `json:"duration_disclaimer"`
}

// Report is the full availability-report pricing for a campaign.
type Report struct {
	Programs          []ProgramLine `json:"programs"`
	AggregateQuantity int           `json:"aggregate_quantity"`
	PrintUnitPrice    float64       `json:"print_unit_price"`
	CampaignTotal     float64       `json:"campaign_total"`
}

// BuildReport prices every program against the bookings and print tier
// schedule. Programs keep their input order; the campaign total is the sum
// of the per-program totals.
func BuildReport(programs []domain.AvailabilityProgram, bookings Bookings, tiers []domain.PrintPriceTier) Report {
	report := Report{AggregateQuantity: bookings.AggregateQuantity()}
	if price, ok := unitPrice(tiers, report.AggregateQuantity); ok {
		report.PrintUnitPrice = price
	}

	for i := range programs {
		p := &programs[i]
		qty := bookings.ProgramTotalQuantity(p.ChannelID)
		line := ProgramLine{
			ChannelID:          p.ChannelID,
			ProgramName:        p.ProgramName,
			TotalQuantity:      qty,
			MediaCost:          MediaCost(p, qty),
			PrintCost:          PrintCost(tiers, qty, report.AggregateQuantity),
			FreightCost:        FreightCost(p, qty),
			DurationDisclaimer: p.DurationDisclaimer,
		}
		line.Total = line.MediaCost + line.PrintCost + line.FreightCost
		report.Programs = append(report.Programs, line)
		report.CampaignTotal += line.Total
	}
	return report
}
