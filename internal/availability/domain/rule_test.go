package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	require.NoError(t, err)
	return ts
}

func TestDeriveSnapshot(t *testing.T) {
	start := mustParse(t, "2024-05-01 09:00")
	end := mustParse(t, "2024-05-01 10:00")

	s := DeriveSnapshot(start, end)

	assert.Equal(t, DayRule{
		Type:     "custom",
		Bookable: "no",
		Priority: 1,
		From:     "2024-05-01",
		To:       "2024-05-01",
	}, s.Day)

	assert.Equal(t, TimeRule{
		Type:     "custom:daterange",
		Bookable: "no",
		Priority: 1,
		From:     "09:00",
		To:       "10:00",
		FromDate: "2024-05-01",
		ToDate:   "2024-05-01",
	}, s.Time)
}

func TestDeriveSnapshot_MultiDaySpan(t *testing.T) {
	start := mustParse(t, "2024-05-01 22:30")
	end := mustParse(t, "2024-05-03 06:15")

	s := DeriveSnapshot(start, end)

	assert.Equal(t, "2024-05-01", s.Day.From)
	assert.Equal(t, "2024-05-03", s.Day.To)
	assert.Equal(t, "22:30", s.Time.From)
	assert.Equal(t, "06:15", s.Time.To)
	assert.Equal(t, "2024-05-01", s.Time.FromDate)
	assert.Equal(t, "2024-05-03", s.Time.ToDate)
}

func TestRule_Matches(t *testing.T) {
	s := DeriveSnapshot(
		mustParse(t, "2024-05-01 09:00"),
		mustParse(t, "2024-05-01 10:00"),
	)

	t.Run("same variant exact match", func(t *testing.T) {
		assert.True(t, s.Rule(RuleUnitDay).Matches(s, RuleUnitDay))
		assert.True(t, s.Rule(RuleUnitTime).Matches(s, RuleUnitTime))
	})

	t.Run("differing field is no match", func(t *testing.T) {
		other := DeriveSnapshot(
			mustParse(t, "2024-05-01 09:00"),
			mustParse(t, "2024-05-01 11:00"),
		)
		assert.False(t, other.Rule(RuleUnitTime).Matches(s, RuleUnitTime))
		// Same calendar dates, so the day variants still match.
		assert.True(t, other.Rule(RuleUnitDay).Matches(s, RuleUnitDay))
	})

	t.Run("cross variant never matches", func(t *testing.T) {
		assert.False(t, s.Rule(RuleUnitDay).Matches(s, RuleUnitTime))
		assert.False(t, s.Rule(RuleUnitTime).Matches(s, RuleUnitDay))
	})

	t.Run("unknown unit", func(t *testing.T) {
		assert.False(t, s.Rule(RuleUnitDay).Matches(s, RuleUnit("week")))
	})
}

func TestRule_JSONWireFormat(t *testing.T) {
	s := DeriveSnapshot(
		mustParse(t, "2024-05-01 09:00"),
		mustParse(t, "2024-05-01 10:00"),
	)

	t.Run("day rule omits date bounds", func(t *testing.T) {
		data, err := json.Marshal(s.Rule(RuleUnitDay))
		require.NoError(t, err)

		var wire map[string]any
		require.NoError(t, json.Unmarshal(data, &wire))
		assert.Equal(t, "custom", wire["type"])
		assert.Equal(t, "no", wire["bookable"])
		assert.Equal(t, float64(1), wire["priority"])
		assert.Equal(t, "2024-05-01", wire["from"])
		assert.NotContains(t, wire, "from_date")
		assert.NotContains(t, wire, "to_date")
	})

	t.Run("time rule carries date bounds", func(t *testing.T) {
		data, err := json.Marshal(s.Rule(RuleUnitTime))
		require.NoError(t, err)

		var wire map[string]any
		require.NoError(t, json.Unmarshal(data, &wire))
		assert.Equal(t, "custom:daterange", wire["type"])
		assert.Equal(t, "09:00", wire["from"])
		assert.Equal(t, "10:00", wire["to"])
		assert.Equal(t, "2024-05-01", wire["from_date"])
		assert.Equal(t, "2024-05-01", wire["to_date"])
	})

	t.Run("decoding picks the variant from the discriminator", func(t *testing.T) {
		collection := []Rule{s.Rule(RuleUnitDay), s.Rule(RuleUnitTime)}
		data, err := json.Marshal(collection)
		require.NoError(t, err)

		var decoded []Rule
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, RuleUnitDay, decoded[0].Kind)
		assert.Equal(t, s.Day, decoded[0].Day)
		assert.Equal(t, RuleUnitTime, decoded[1].Kind)
		assert.Equal(t, s.Time, decoded[1].Time)
	})
}

func TestUnitFor(t *testing.T) {
	tests := []struct {
		name        string
		allDay      bool
		productUnit DurationUnit
		want        RuleUnit
	}{
		{"hourly product, timed booking", false, DurationUnitHour, RuleUnitTime},
		{"minute product, timed booking", false, DurationUnitMinute, RuleUnitTime},
		{"night product, timed booking", false, DurationUnitNight, RuleUnitTime},
		{"day product forces day unit", false, DurationUnitDay, RuleUnitDay},
		{"month product forces day unit", false, DurationUnitMonth, RuleUnitDay},
		{"all-day booking forces day unit", true, DurationUnitHour, RuleUnitDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnitFor(tt.allDay, tt.productUnit))
		})
	}
}
