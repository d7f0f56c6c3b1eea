// Package availability turns the raw, loosely-typed program availability
// payloads returned by the booking API into canonical
// domain.AvailabilityProgram records.
//
// The remote API has grown several generations of field names, so every
// lookup probes a fixed priority list of aliases and takes the first
// defined, non-null, non-empty value. Entries that cannot be keyed to a
// channel are dropped silently; a partial record is always preferred over
// an error.
package availability

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ignite/insert-planner/internal/domain"
)

// Alias probe order for the keys the payloads disagree on. First match wins.
var (
	channelIDAliases = []string{"channel_id", "program_id", "id"}
	nameAliases      = []string{"program_name", "name", "title"}
	checkTypeAliases = []string{"availability_check_type", "check_type"}
)

// Months in calendar order, lowercase, as used in availability payloads
// and booking keys.
var Months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var titleCaser = cases.Title(language.English)

// TitleMonth renders a lowercase month key for display ("may" → "May").
func TitleMonth(month string) string { return titleCaser.String(month) }

// NormalizeAll converts a raw availability payload into canonical records.
// The payload may be a JSON array of program objects or an object keyed by
// channel id (the key then serves as the channel-id fallback). Entries that
// resolve no channel id are skipped. Output is sorted by channel id so
// reports render stably.
func NormalizeAll(raw interface{}) []domain.AvailabilityProgram {
	var out []domain.AvailabilityProgram

	switch v := raw.(type) {
	case []interface{}:
		for _, entry := range v {
			if p := Normalize(entry, ""); p != nil {
				out = append(out, *p)
			}
		}
	case map[string]interface{}:
		// Some payload generations key programs by channel id. Others wrap
		// the array in a "programs" or "data" envelope.
		if inner, ok := v["programs"]; ok {
			return NormalizeAll(inner)
		}
		if inner, ok := v["data"]; ok {
			return NormalizeAll(inner)
		}
		for key, entry := range v {
			if p := Normalize(entry, key); p != nil {
				out = append(out, *p)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out
}

// Normalize converts one raw program object. Returns nil when no channel
// identifier can be resolved; callers drop such entries without error.
func Normalize(raw interface{}, fallbackChannelID string) *domain.AvailabilityProgram {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}

	channelID, alias := probeString(obj, channelIDAliases)
	if channelID == "" {
		channelID = fallbackChannelID
		alias = "(map key)"
	}
	if channelID == "" {
		return nil
	}
	log.Printf("[availability] channel %s resolved via %s", channelID, alias)

	name, _ := probeString(obj, nameAliases)

	p := &domain.AvailabilityProgram{
		ChannelID:   channelID,
		ProgramName: name,
		CheckType:   parseCheckType(obj),
		Monthly:     map[string]domain.MonthAvailability{},
	}

	if v, ok := obj["duration_disclaimer"].(bool); ok {
		p.DurationDisclaimer = v
	}

	metrics, _ := obj["metrics"].(map[string]interface{})
	p.MediaRate = resolveMediaRate(metrics, obj)
	p.FreightRanges = ParseFreightRanges(metrics)

	if list, ok := obj["availability"].([]interface{}); ok {
		for _, entry := range list {
			month, avail := normalizeMonth(entry)
			if month == "" {
				continue
			}
			p.Monthly[month] = avail
		}
	}

	return p
}

// probeString returns the first alias whose value is a non-empty string
// (numbers are stringified; JSON ids arrive as either), plus the alias
// that matched.
func probeString(obj map[string]interface{}, aliases []string) (string, string) {
	for _, alias := range aliases {
		v, ok := obj[alias]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t, alias
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), alias
		}
	}
	return "", ""
}

func parseCheckType(obj map[string]interface{}) domain.AvailabilityCheckType {
	s, _ := probeString(obj, checkTypeAliases)
	if strings.EqualFold(s, string(domain.CheckManual)) {
		return domain.CheckManual
	}
	return domain.CheckInstant
}

func resolveMediaRate(metrics, obj map[string]interface{}) float64 {
	if r, ok := toNumber(metrics["media_rate"]); ok {
		return r
	}
	if r, ok := toNumber(obj["media_rate"]); ok {
		return r
	}
	return 0
}

// normalizeMonth derives one month's availability from a raw entry.
//
// Value resolution order: numeric "available", then a numeric string,
// then "max_slot" when present or when available == true, else 0.
// A reason is only attached to zero-availability months.
func normalizeMonth(entry interface{}) (string, domain.MonthAvailability) {
	obj, ok := entry.(map[string]interface{})
	if !ok {
		return "", domain.MonthAvailability{}
	}
	month, _ := probeString(obj, []string{"month", "month_name"})
	month = strings.ToLower(strings.TrimSpace(month))
	if month == "" {
		return "", domain.MonthAvailability{}
	}

	units := 0
	switch v := obj["available"].(type) {
	case float64:
		units = int(v)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			units = int(n)
		} else if slot, ok := toNumber(obj["max_slot"]); ok {
			units = int(slot)
		}
	case bool:
		if v {
			if slot, ok := toNumber(obj["max_slot"]); ok {
				units = int(slot)
			}
		}
	default:
		if slot, ok := toNumber(obj["max_slot"]); ok {
			units = int(slot)
		}
	}
	if units < 0 {
		units = 0
	}

	avail := domain.MonthAvailability{Units: units}
	if units == 0 {
		if reason := extractReason(obj["reason"]); reason != "" {
			avail.Reason = &reason
		}
	}
	return month, avail
}

func extractReason(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		if msg, ok := t["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// ParseFreightRanges extracts freight bands from the metrics map.
//
// Keys look like freight_<min>, freight_<min>_<max> or freight_<min>_plus,
// where min/max tokens may carry a k (×1e3) or m (×1e6) suffix. A bare
// single-token key matches only that exact quantity; _plus is open-ended.
// Keys or values that don't parse are dropped silently.
func ParseFreightRanges(metrics map[string]interface{}) []domain.FreightRange {
	var ranges []domain.FreightRange
	for key, raw := range metrics {
		if !strings.HasPrefix(key, "freight_") {
			continue
		}
		value, ok := toNumber(raw)
		if !ok {
			continue
		}
		r, err := parseFreightKey(strings.TrimPrefix(key, "freight_"))
		if err != nil {
			continue
		}
		r.Value = value
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Min < ranges[j].Min })
	return ranges
}

func parseFreightKey(spec string) (domain.FreightRange, error) {
	tokens := strings.Split(spec, "_")
	switch len(tokens) {
	case 1:
		min, err := parseQuantityToken(tokens[0])
		if err != nil {
			return domain.FreightRange{}, err
		}
		max := min
		return domain.FreightRange{Min: min, Max: &max}, nil
	case 2:
		min, err := parseQuantityToken(tokens[0])
		if err != nil {
			return domain.FreightRange{}, err
		}
		if tokens[1] == "plus" {
			return domain.FreightRange{Min: min}, nil
		}
		max, err := parseQuantityToken(tokens[1])
		if err != nil {
			return domain.FreightRange{}, err
		}
		return domain.FreightRange{Min: min, Max: &max}, nil
	default:
		return domain.FreightRange{}, fmt.Errorf("freight key %q: too many tokens", spec)
	}
}

// parseQuantityToken parses "250", "250k" or "1m" into units.
func parseQuantityToken(tok string) (int, error) {
	mult := 1
	switch {
	case strings.HasSuffix(tok, "k"):
		mult = 1_000
		tok = strings.TrimSuffix(tok, "k")
	case strings.HasSuffix(tok, "m"):
		mult = 1_000_000
		tok = strings.TrimSuffix(tok, "m")
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, err
	}
	return n * mult, nil
}

func toNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
