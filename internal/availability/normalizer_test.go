package availability_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/insert-planner/internal/availability"
	"github.com/ignite/insert-planner/internal/domain"
)

func decode(t *testing.T, s string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestNormalize_AliasProbing(t *testing.T) {
	// Only program_id present: still keys the record.
	raw := decode(t, `{"program_id": "ch-9", "name": "Valley Weekly"}`)
	p := availability.Normalize(raw, "")
	require.NotNil(t, p)
	assert.Equal(t, "ch-9", p.ChannelID)
	assert.Equal(t, "Valley Weekly", p.ProgramName)

	// channel_id outranks program_id and id.
	raw = decode(t, `{"id": "c", "program_id": "b", "channel_id": "a"}`)
	p = availability.Normalize(raw, "")
	require.NotNil(t, p)
	assert.Equal(t, "a", p.ChannelID)

	// Empty strings are skipped, not taken.
	raw = decode(t, `{"channel_id": "", "id": "ch-2"}`)
	p = availability.Normalize(raw, "")
	require.NotNil(t, p)
	assert.Equal(t, "ch-2", p.ChannelID)
}

func TestNormalize_NoChannelID(t *testing.T) {
	raw := decode(t, `{"program_name": "Orphan"}`)
	assert.Nil(t, availability.Normalize(raw, ""))

	// Fallback (map key) rescues it.
	p := availability.Normalize(raw, "ch-f")
	require.NotNil(t, p)
	assert.Equal(t, "ch-f", p.ChannelID)
}

func TestNormalize_MonthlyAvailability(t *testing.T) {
	raw := decode(t, `{
		"channel_id": "ch-1",
		"availability": [
			{"month": "January", "available": 150000},
			{"month": "february", "available": "75000"},
			{"month": "march", "available": true, "max_slot": 50000},
			{"month": "april", "max_slot": 25000},
			{"month": "may", "available": 0, "reason": "fully booked"},
			{"month": "june", "available": 0, "reason": {"message": "press maintenance"}},
			{"month": "july"}
		]
	}`)
	p := availability.Normalize(raw, "")
	require.NotNil(t, p)

	assert.Equal(t, 150000, p.AvailableUnits("january"))
	assert.Equal(t, 75000, p.AvailableUnits("february"))
	assert.Equal(t, 50000, p.AvailableUnits("march"))
	assert.Equal(t, 25000, p.AvailableUnits("april"))

	require.NotNil(t, p.Monthly["may"].Reason)
	assert.Equal(t, "fully booked", *p.Monthly["may"].Reason)
	require.NotNil(t, p.Monthly["june"].Reason)
	assert.Equal(t, "press maintenance", *p.Monthly["june"].Reason)

	// No value at all: zero units, no reason.
	assert.Equal(t, 0, p.Monthly["july"].Units)
	assert.Nil(t, p.Monthly["july"].Reason)

	// Non-zero months never carry a reason.
	assert.Nil(t, p.Monthly["january"].Reason)
}

func TestNormalize_MediaRate(t *testing.T) {
	raw := decode(t, `{"channel_id": "a", "metrics": {"media_rate": 42.5}, "media_rate": 10}`)
	p := availability.Normalize(raw, "")
	require.NotNil(t, p)
	assert.Equal(t, 42.5, p.MediaRate)

	raw = decode(t, `{"channel_id": "a", "media_rate": 10}`)
	p = availability.Normalize(raw, "")
	require.NotNil(t, p)
	assert.Equal(t, 10.0, p.MediaRate)

	raw = decode(t, `{"channel_id": "a"}`)
	p = availability.Normalize(raw, "")
	require.NotNil(t, p)
	assert.Equal(t, 0.0, p.MediaRate)
}

func TestParseFreightRanges(t *testing.T) {
	metrics := decode(t, `{
		"freight_0_24999": 10,
		"freight_25k_99k": 18,
		"freight_100k_plus": 25,
		"freight_250k": 40,
		"freight_1m_plus": 60,
		"freight_bogus_x": 99,
		"freight_50k": "not a number",
		"media_rate": 12
	}`).(map[string]interface{})

	ranges := availability.ParseFreightRanges(metrics)
	require.Len(t, ranges, 5)

	// Sorted ascending by min.
	assert.Equal(t, 0, ranges[0].Min)
	require.NotNil(t, ranges[0].Max)
	assert.Equal(t, 24999, *ranges[0].Max)
	assert.Equal(t, 10.0, ranges[0].Value)

	assert.Equal(t, 25000, ranges[1].Min)
	require.NotNil(t, ranges[1].Max)
	assert.Equal(t, 99000, *ranges[1].Max)

	// _plus means open-ended.
	assert.Equal(t, 100000, ranges[2].Min)
	assert.Nil(t, ranges[2].Max)

	// Single token means exact-match-only.
	assert.Equal(t, 250000, ranges[3].Min)
	require.NotNil(t, ranges[3].Max)
	assert.Equal(t, 250000, *ranges[3].Max)

	// m suffix scales by a million.
	assert.Equal(t, 1000000, ranges[4].Min)
	assert.Nil(t, ranges[4].Max)
}

func TestNormalizeAll_Shapes(t *testing.T) {
	arr := decode(t, `[
		{"channel_id": "b"},
		{"channel_id": "a"},
		{"program_name": "no key, dropped"}
	]`)
	programs := availability.NormalizeAll(arr)
	require.Len(t, programs, 2)
	assert.Equal(t, "a", programs[0].ChannelID)
	assert.Equal(t, "b", programs[1].ChannelID)

	keyed := decode(t, `{
		"ch-1": {"program_name": "One"},
		"ch-2": {"channel_id": "ch-2", "program_name": "Two"}
	}`)
	programs = availability.NormalizeAll(keyed)
	require.Len(t, programs, 2)
	assert.Equal(t, "ch-1", programs[0].ChannelID)
	assert.Equal(t, "One", programs[0].ProgramName)

	wrapped := decode(t, `{"programs": [{"channel_id": "x"}]}`)
	programs = availability.NormalizeAll(wrapped)
	require.Len(t, programs, 1)
	assert.Equal(t, "x", programs[0].ChannelID)
}

func TestNormalize_CheckTypeAndDisclaimer(t *testing.T) {
	raw := decode(t, `{"channel_id": "a", "availability_check_type": "manual", "duration_disclaimer": true}`)
	p := availability.Normalize(raw, "")
	require.NotNil(t, p)
	assert.Equal(t, domain.CheckManual, p.CheckType)
	assert.True(t, p.DurationDisclaimer)

	raw = decode(t, `{"channel_id": "a"}`)
	p = availability.Normalize(raw, "")
	require.NotNil(t, p)
	assert.Equal(t, domain.CheckInstant, p.CheckType)
}

func TestTitleMonth(t *testing.T) {
	assert.Equal(t, "May", availability.TitleMonth("may"))
	assert.Equal(t, "September", availability.TitleMonth("september"))
}
