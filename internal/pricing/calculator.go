// Package pricing computes the availability-report cost breakdown for a
// campaign: media cost from the program's rate card, freight cost from
// quantity-banded freight ranges, and print cost from a volume-discount
// tier schedule applied to the combined order across the whole campaign.
//
// Everything here is pure: callers recompute on every input change rather
// than caching, and partially entered bookings (months with no quantity
// yet) are valid input throughout.
package pricing

import (
	"sort"

	"github.com/ignite/insert-planner/internal/domain"
)

// Bookings holds the user's validated quantities, keyed by channel id then
// lowercase month. Nil or missing entries count as zero.
type Bookings map[string]map[string]*int

// Quantity returns the booked quantity for one program/month (0 when unset).
func (b Bookings) Quantity(channelID, month string) int {
	q := b[channelID][month]
	if q == nil {
		return 0
	}
	return *q
}

// ProgramTotalQuantity sums the validated quantities across all months of
// one program.
func (b Bookings) ProgramTotalQuantity(channelID string) int {
	total := 0
	for _, q := range b[channelID] {
		if q != nil {
			total += *q
		}
	}
	return total
}

// AggregateQuantity sums the validated quantities across every program and
// month. Print tiers are matched against this combined figure.
func (b Bookings) AggregateQuantity() int {
	total := 0
	for channelID := range b {
		total += b.ProgramTotalQuantity(channelID)
	}
	return total
}

// MediaCost is the insertion media cost for one program: the program's
// per-thousand rate applied to its total booked quantity.
func MediaCost(p *domain.AvailabilityProgram, totalQuantity int) float64 {
	if totalQuantity == 0 {
		return 0
	}
	return (p.MediaRate / 1000.0) * float64(totalQuantity)
}

// FreightCost selects the freight band for the program's total quantity.
//
// A band containing the quantity wins (lowest min first, so non-overlapping
// schedules behave as direct lookup). When no band contains it, the band
// with the largest min still at or below the quantity is used as the
// overflow case. Quantities below every band, or a program with no bands,
// cost nothing.
func FreightCost(p *domain.AvailabilityProgram, totalQuantity int) float64 {
	if totalQuantity == 0 {
		return 0
	}
	for _, r := range p.FreightRanges {
		if r.Contains(totalQuantity) {
			return r.Value
		}
	}
	best := -1
	for i, r := range p.FreightRanges {
		if r.Min <= totalQuantity {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return p.FreightRanges[best].Value
}

// PrintCost bills one program its share of the campaign's print run.
//
// The per-unit price comes from the tier matching the aggregate quantity
// across all programs (volume discount on the combined order); the program
// is then charged that unit price times its own quantity only.
func PrintCost(tiers []domain.PrintPriceTier, programQuantity, aggregateQuantity int) float64 {
	if programQuantity == 0 {
		return 0
	}
	price, ok := unitPrice(tiers, aggregateQuantity)
	if !ok {
		return 0
	}
	return price * float64(programQuantity)
}

// unitPrice finds the per-unit print price for a quantity. The highest-min
// matching tier wins; a quantity below the smallest tier's min uses the
// smallest tier's price.
func unitPrice(tiers []domain.PrintPriceTier, quantity int) (float64, bool) {
	if len(tiers) == 0 {
		return 0, false
	}
	best := -1
	for i, t := range tiers {
		if t.Matches(quantity) && (best < 0 || t.MinQuantity >= tiers[best].MinQuantity) {
			best = i
		}
	}
	if best >= 0 {
		return tiers[best].PricePerUnit, true
	}
	smallest := 0
	for i := range tiers {
		if tiers[i].MinQuantity < tiers[smallest].MinQuantity {
			smallest = i
		}
	}
	if quantity < tiers[smallest].MinQuantity {
		return tiers[smallest].PricePerUnit, true
	}
	return 0, false
}

// BuildPrintTiers turns a raw threshold→price schedule (as served by the
// print-price-matrix endpoint) into ascending contiguous tiers. Each tier's
// implicit max is one unit below the next threshold; the top tier is
// open-ended.
func BuildPrintTiers(schedule map[int]float64) []domain.PrintPriceTier {
	thresholds := make([]int, 0, len(schedule))
	for min := range schedule {
		thresholds = append(thresholds, min)
	}
	sort.Ints(thresholds)

	tiers := make([]domain.PrintPriceTier, 0, len(thresholds))
	for i, min := range thresholds {
		t := domain.PrintPriceTier{MinQuantity: min, PricePerUnit: schedule[min]}
		if i+1 < len(thresholds) {
			max := thresholds[i+1] - 1
			t.MaxQuantity = &max
		}
		tiers = append(tiers, t)
	}
	return tiers
}
