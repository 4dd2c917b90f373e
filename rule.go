package harvest

import "time"

// RuleKind discriminates the recurrence rule variants.
type RuleKind string

// Recurrence rule variants.
const (
	RuleDaily    RuleKind = "daily"
	RuleWeekly   RuleKind = "weekly"
	RuleMonthly  RuleKind = "monthly"
	RuleInterval RuleKind = "interval"
)

// Rule is a tagged-variant recurrence rule. Only the fields relevant to the
// kind are meaningful. Rules are constructed and validated at registration
// time and never re-parsed from strings at fire time.
//
// All wall-clock rules fire in UTC.
type Rule struct {
	Kind RuleKind `json:"kind"`

	// Weekday applies to weekly rules.
	Weekday time.Weekday `json:"weekday"`

	// Day applies to monthly rules and is restricted to 1-28 to avoid
	// month-length ambiguity.
	Day int `json:"day"`

	// Hour and Minute apply to daily, weekly and monthly rules.
	Hour   int `json:"hour"`
	Minute int `json:"minute"`

	// EveryHours applies to interval rules.
	EveryHours int `json:"everyHours"`
}

// Daily returns a rule that fires once per day at the given UTC wall-clock
// time.
func Daily(hour, minute int) Rule {
	return Rule{Kind: RuleDaily, Hour: hour, Minute: minute}
}

// Weekly returns a rule that fires once per week on the given day.
func Weekly(weekday time.Weekday, hour, minute int) Rule {
	return Rule{Kind: RuleWeekly, Weekday: weekday, Hour: hour, Minute: minute}
}

// Monthly returns a rule that fires once per month on the given day (1-28).
func Monthly(day, hour, minute int) Rule {
	return Rule{Kind: RuleMonthly, Day: day, Hour: hour, Minute: minute}
}

// EveryHours returns a rule that fires every n hours from the time it was
// last armed.
func EveryHours(n int) Rule {
	return Rule{Kind: RuleInterval, EveryHours: n}
}

// Validate returns an error if the rule is not well-formed. Invalid rules
// are rejected at registration time, not at fire time.
func (r Rule) Validate() error {
	switch r.Kind {
	case RuleDaily:
		return r.validateClock()
	case RuleWeekly:
		if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
			return Errorf(EINVALID, "weekly rule weekday must be Sunday through Saturday")
		}
		return r.validateClock()
	case RuleMonthly:
		if r.Day < 1 || r.Day > 28 {
			return Errorf(EINVALID, "monthly rule day must be between 1 and 28, got %d", r.Day)
		}
		return r.validateClock()
	case RuleInterval:
		if r.EveryHours < 1 {
			return Errorf(EINVALID, "interval rule must be at least 1 hour, got %d", r.EveryHours)
		}
		return nil
	default:
		return Errorf(EINVALID, "unknown rule kind %q", r.Kind)
	}
}

func (r Rule) validateClock() error {
	if r.Hour < 0 || r.Hour > 23 {
		return Errorf(EINVALID, "rule hour must be between 0 and 23, got %d", r.Hour)
	}
	if r.Minute < 0 || r.Minute > 59 {
		return Errorf(EINVALID, "rule minute must be between 0 and 59, got %d", r.Minute)
	}
	return nil
}

// Next returns the first fire time strictly after the given instant.
// The computation is done in UTC regardless of the location of after.
func (r Rule) Next(after time.Time) time.Time {
	after = after.UTC()

	switch r.Kind {
	case RuleDaily:
		next := time.Date(after.Year(), after.Month(), after.Day(), r.Hour, r.Minute, 0, 0, time.UTC)
		if !next.After(after) {
			next = next.AddDate(0, 0, 1)
		}
		return next

	case RuleWeekly:
		next := time.Date(after.Year(), after.Month(), after.Day(), r.Hour, r.Minute, 0, 0, time.UTC)
		days := (int(r.Weekday) - int(next.Weekday()) + 7) % 7
		next = next.AddDate(0, 0, days)
		if !next.After(after) {
			next = next.AddDate(0, 0, 7)
		}
		return next

	case RuleMonthly:
		next := time.Date(after.Year(), after.Month(), r.Day, r.Hour, r.Minute, 0, 0, time.UTC)
		if !next.After(after) {
			// Day <= 28, so adding a month never normalizes into the
			// month after next.
			next = next.AddDate(0, 1, 0)
		}
		return next

	case RuleInterval:
		return after.Add(time.Duration(r.EveryHours) * time.Hour)
	}

	return time.Time{}
}
