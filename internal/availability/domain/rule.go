package domain

import (
	"encoding/json"
	"time"
)

// Rule field constants shared by both exclusion shapes. Priority is fixed:
// booking-driven exclusions always sit at the same level so the availability
// evaluator treats them uniformly.
const (
	RuleTypeDay  = "custom"
	RuleTypeTime = "custom:daterange"
	RuleBookable = "no"
	RulePriority = 1
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// RuleUnit selects which exclusion shape applies to a product.
type RuleUnit string

const (
	RuleUnitDay  RuleUnit = "day"
	RuleUnitTime RuleUnit = "time"
)

// DayRule blocks an inclusive calendar date range.
type DayRule struct {
	Type     string `json:"type"`
	Bookable string `json:"bookable"`
	Priority int    `json:"priority"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// TimeRule blocks a time-of-day span bounded by calendar dates.
type TimeRule struct {
	Type     string `json:"type"`
	Bookable string `json:"bookable"`
	Priority int    `json:"priority"`
	From     string `json:"from"`
	To       string `json:"to"`
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// Rule is a tagged union over the two exclusion shapes. Exactly one of Day
// and Time carries data, according to Kind. On the wire a rule is a flat
// object; the type discriminator decides the variant when decoding.
type Rule struct {
	Kind RuleUnit
	Day  DayRule
	Time TimeRule
}

// DayRuleEntry wraps a day rule as a collection entry.
func DayRuleEntry(r DayRule) Rule {
	return Rule{Kind: RuleUnitDay, Day: r}
}

// TimeRuleEntry wraps a time rule as a collection entry.
func TimeRuleEntry(r TimeRule) Rule {
	return Rule{Kind: RuleUnitTime, Time: r}
}

// Snapshot is the day/time rule pair derived from one booking's span. It is
// persisted on the booking so a later update can diff against what was
// previously pushed to sibling products.
type Snapshot struct {
	Day  DayRule  `json:"day"`
	Time TimeRule `json:"time"`
}

// DeriveSnapshot converts a booking's span into the canonical rule pair.
// Pure; the all-day flag does not participate here, it only steers unit
// selection per sibling product.
func DeriveSnapshot(start, end time.Time) Snapshot {
	return Snapshot{
		Day: DayRule{
			Type:     RuleTypeDay,
			Bookable: RuleBookable,
			Priority: RulePriority,
			From:     start.Format(dateLayout),
			To:       end.Format(dateLayout),
		},
		Time: TimeRule{
			Type:     RuleTypeTime,
			Bookable: RuleBookable,
			Priority: RulePriority,
			From:     start.Format(timeLayout),
			To:       end.Format(timeLayout),
			FromDate: start.Format(dateLayout),
			ToDate:   end.Format(dateLayout),
		},
	}
}

// Rule returns the snapshot's rule for the given unit as a collection entry.
func (s Snapshot) Rule(unit RuleUnit) Rule {
	if unit == RuleUnitDay {
		return DayRuleEntry(s.Day)
	}
	return TimeRuleEntry(s.Time)
}

// Matches reports whether this collection entry is an exact match for the
// snapshot's rule under the given unit. A rule of the other variant never
// matches: the type discriminator differs, so the field comparison the
// source system performed would fail on the first key.
func (r Rule) Matches(s Snapshot, unit RuleUnit) bool {
	switch unit {
	case RuleUnitDay:
		return r.Kind == RuleUnitDay && r.Day == s.Day
	case RuleUnitTime:
		return r.Kind == RuleUnitTime && r.Time == s.Time
	default:
		return false
	}
}

// ruleWire is the flat wire form of a rule.
type ruleWire struct {
	Type     string `json:"type"`
	Bookable string `json:"bookable"`
	Priority int    `json:"priority"`
	From     string `json:"from"`
	To       string `json:"to"`
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`
}

// MarshalJSON flattens the tagged union into the wire form.
func (r Rule) MarshalJSON() ([]byte, error) {
	if r.Kind == RuleUnitTime {
		return json.Marshal(ruleWire{
			Type:     r.Time.Type,
			Bookable: r.Time.Bookable,
			Priority: r.Time.Priority,
			From:     r.Time.From,
			To:       r.Time.To,
			FromDate: r.Time.FromDate,
			ToDate:   r.Time.ToDate,
		})
	}
	return json.Marshal(ruleWire{
		Type:     r.Day.Type,
		Bookable: r.Day.Bookable,
		Priority: r.Day.Priority,
		From:     r.Day.From,
		To:       r.Day.To,
	})
}

// UnmarshalJSON picks the variant from the type discriminator.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var wire ruleWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	if wire.Type == RuleTypeTime {
		*r = TimeRuleEntry(TimeRule{
			Type:     wire.Type,
			Bookable: wire.Bookable,
			Priority: wire.Priority,
			From:     wire.From,
			To:       wire.To,
			FromDate: wire.FromDate,
			ToDate:   wire.ToDate,
		})
		return nil
	}

	*r = DayRuleEntry(DayRule{
		Type:     wire.Type,
		Bookable: wire.Bookable,
		Priority: wire.Priority,
		From:     wire.From,
		To:       wire.To,
	})
	return nil
}

// UnitFor decides which exclusion shape a sibling product receives: day
// rules for all-day bookings and for products with day- or month-granular
// durations, time rules otherwise.
func UnitFor(allDay bool, productUnit DurationUnit) RuleUnit {
	if allDay || productUnit == DurationUnitDay || productUnit == DurationUnitMonth {
		return RuleUnitDay
	}
	return RuleUnitTime
}
