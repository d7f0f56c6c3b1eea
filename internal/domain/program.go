package domain

// AvailabilityCheckType states whether a program's open slots are confirmed
// automatically or need a human on the publisher side.
type AvailabilityCheckType string

const (
	CheckInstant AvailabilityCheckType = "instant"
	CheckManual  AvailabilityCheckType = "manual"
)

// FreightRange is one shipping-cost band keyed by booked quantity.
// Max == nil means the band is open-ended. Min == *Max means the band
// matches only that exact quantity.
type FreightRange struct {
	Min   int     `json:"min"`
	Max   *int    `json:"max,omitempty"`
	Value float64 `json:"value"`
}

// Contains reports whether q falls inside the range.
func (r FreightRange) Contains(q int) bool {
	if q < r.Min {
		return false
	}
	return r.Max == nil || q <= *r.Max
}

// MonthAvailability is the open capacity for one month of a program.
// Reason is only populated when Units is 0.
type MonthAvailability struct {
	Units  int     `json:"units"`
	Reason *string `json:"reason,omitempty"`
}

// AvailabilityProgram is the canonical per-program availability/pricing
// record produced by the normalizer. Constructed fresh on every
// availability fetch and immutable afterwards.
type AvailabilityProgram struct {
	ChannelID          string                       `json:"channel_id"`
	ProgramName        string                       `json:"program_name"`
	CheckType          AvailabilityCheckType        `json:"availability_check_type"`
	MediaRate          float64                      `json:"media_rate"`
	FreightRanges      []FreightRange               `json:"freight_ranges"`
	Monthly            map[string]MonthAvailability `json:"monthly_availability"`
	DurationDisclaimer bool                         `json:"duration_disclaimer"`
}

// AvailableUnits returns the ceiling for a month (0 when the month is
// unknown). Month names are lowercase throughout.
func (p *AvailabilityProgram) AvailableUnits(month string) int {
	return p.Monthly[month].Units
}

// PrintPriceTier is one band of the print-cost schedule. Tiers are
// contiguous and ascending; MaxQuantity == nil marks the open-ended top
// tier.
type PrintPriceTier struct {
	MinQuantity  int     `json:"min_quantity"`
	MaxQuantity  *int    `json:"max_quantity,omitempty"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// Matches reports whether q falls inside the tier.
func (t PrintPriceTier) Matches(q int) bool {
	if q < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || q <= *t.MaxQuantity
}
