package preference

import (
	"context"
	"fmt"
	"time"

	preferenceDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/preference"
)

type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
)

// Category groups notification kinds for the per-user toggles.
type Category string

const (
	CategoryTimesheets Category = "timesheets"
	CategoryExpenses   Category = "expenses"
	CategoryDeadlines  Category = "deadlines"
	CategorySystem     Category = "system"
)

type Channels struct {
	Email bool `json:"email"`
	// InApp is kept for clients that show the toggle. In-app records are
	// always created, so it never suppresses one.
	InApp bool `json:"in_app"`
}

type Categories struct {
	Timesheets bool `json:"timesheets"`
	Expenses   bool `json:"expenses"`
	Deadlines  bool `json:"deadlines"`
	System     bool `json:"system"`
}

// QuietHours is a daily window in "HH:MM" local time. End before Start wraps
// past midnight.
type QuietHours struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

type Preferences struct {
	UserID     int64      `json:"user_id"`
	Channels   Channels   `json:"channels"`
	Categories Categories `json:"categories"`
	Frequency  Frequency  `json:"frequency"`
	QuietHours QuietHours `json:"quiet_hours"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Repository interface {
	// Get returns ErrNoPreferences when the user never saved any.
	Get(ctx context.Context, userID int64) (*Preferences, error)
	Upsert(ctx context.Context, p *Preferences) error
}

// Cache stores preferences by user. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, userID int64) (*Preferences, bool, error)
	Set(ctx context.Context, p *Preferences) error
	Delete(ctx context.Context, userID int64) error
}

var ErrNoPreferences = fmt.Errorf("no stored notification preferences")

// Defaults are used for users who never saved preferences.
func Defaults(userID int64) *Preferences {
	return &Preferences{
		UserID:     userID,
		Channels:   Channels{Email: true, InApp: true},
		Categories: Categories{Timesheets: true, Expenses: true, Deadlines: true, System: true},
		Frequency:  FrequencyImmediate,
		QuietHours: QuietHours{Start: "22:00", End: "07:00", Enabled: false},
	}
}

func (p *Preferences) CategoryEnabled(c Category) bool {
	switch c {
	case CategoryTimesheets:
		return p.Categories.Timesheets
	case CategoryExpenses:
		return p.Categories.Expenses
	case CategoryDeadlines:
		return p.Categories.Deadlines
	case CategorySystem:
		return p.Categories.System
	default:
		return true
	}
}

// Contains reports whether the wall-clock time of t falls inside the window.
// t must already be in the zone the window is defined in. A window whose
// start equals its end, or that cannot be parsed, is empty.
func (q QuietHours) Contains(t time.Time) bool {
	start, err := minuteOfDay(q.Start)
	if err != nil {
		return false
	}
	end, err := minuteOfDay(q.End)
	if err != nil {
		return false
	}
	m := t.Hour()*60 + t.Minute()

	switch {
	case start == end:
		return false
	case start < end:
		return m >= start && m < end
	default:
		return m >= start || m < end
	}
}

func minuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func ToDataModel(p *Preferences) *preferenceDatamodel.NotificationPreference {
	return &preferenceDatamodel.NotificationPreference{
		UserID:            p.UserID,
		EmailEnabled:      p.Channels.Email,
		InAppEnabled:      p.Channels.InApp,
		TimesheetsEnabled: p.Categories.Timesheets,
		ExpensesEnabled:   p.Categories.Expenses,
		DeadlinesEnabled:  p.Categories.Deadlines,
		SystemEnabled:     p.Categories.System,
		Frequency:         string(p.Frequency),
		QuietHoursStart:   p.QuietHours.Start,
		QuietHoursEnd:     p.QuietHours.End,
		QuietHoursEnabled: p.QuietHours.Enabled,
		UpdatedAt:         p.UpdatedAt,
	}
}

func FromDataModel(p *preferenceDatamodel.NotificationPreference) *Preferences {
	return &Preferences{
		UserID:   p.UserID,
		Channels: Channels{Email: p.EmailEnabled, InApp: p.InAppEnabled},
		Categories: Categories{
			Timesheets: p.TimesheetsEnabled,
			Expenses:   p.ExpensesEnabled,
			Deadlines:  p.DeadlinesEnabled,
			System:     p.SystemEnabled,
		},
		Frequency:  Frequency(p.Frequency),
		QuietHours: QuietHours{Start: p.QuietHoursStart, End: p.QuietHoursEnd, Enabled: p.QuietHoursEnabled},
		UpdatedAt:  p.UpdatedAt,
	}
}
