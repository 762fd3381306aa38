// Package app wires the planning steps together: import a schedule, pick
// dining venues, generate a plan, then export or render it.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"fuel-planner/internal/calendar"
	"fuel-planner/internal/dining"
	"fuel-planner/internal/metrics"
	"fuel-planner/internal/planner"
	"fuel-planner/internal/preferences"
	"fuel-planner/internal/render"
	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

// Deps are the collaborators of an App. Metrics and Google are optional.
type Deps struct {
	Logger   *zap.Logger
	Dining   *dining.Dataset
	Planner  *planner.Planner
	Metrics  *metrics.Store
	Google   *calendar.GoogleImporter
	Location *time.Location
	// GoogleErr explains why Google is nil. It is returned from the Google
	// operations so the caller sees the missing setting.
	GoogleErr error
	Now       func() time.Time
}

// App holds the application's dependencies. It keeps no per-user state.
type App struct {
	logger    *zap.Logger
	dining    *dining.Dataset
	planner   *planner.Planner
	metrics   *metrics.Store
	google    *calendar.GoogleImporter
	googleErr error
	loc       *time.Location
	now       func() time.Time
}

// NewApp creates an App from deps, filling in a no-op logger, the built-in
// dining table, UTC and the wall clock where they are missing.
func NewApp(deps Deps) *App {
	a := &App{
		logger:    deps.Logger,
		dining:    deps.Dining,
		planner:   deps.Planner,
		metrics:   deps.Metrics,
		google:    deps.Google,
		googleErr: deps.GoogleErr,
		loc:       deps.Location,
		now:       deps.Now,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.dining == nil {
		a.dining = dining.DefaultDataset()
	}
	if a.loc == nil {
		a.loc = time.UTC
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.google == nil && a.googleErr == nil {
		a.googleErr = fmt.Errorf("%w: Google Calendar import is not configured", shared.ErrConfiguration)
	}
	return a
}

// Location is the viewer time zone used for rendering and validation.
func (a *App) Location() *time.Location { return a.loc }

// ImportICS parses an uploaded calendar into class blocks.
func (a *App) ImportICS(r io.Reader) ([]schedule.ClassBlock, error) {
	blocks, err := calendar.Import(r)
	if err != nil {
		a.logger.Warn("calendar import failed", zap.Error(err))
		return nil, err
	}
	a.logger.Info("calendar imported", zap.Int("classes", len(blocks)))
	return blocks, nil
}

// GoogleAuthURL starts the Google Calendar consent flow.
func (a *App) GoogleAuthURL() (string, error) {
	if a.google == nil {
		return "", a.googleErr
	}
	url, _, err := a.google.AuthURL()
	return url, err
}

// GoogleExchange completes the consent flow. The token goes back to the
// client, which presents it again on import.
func (a *App) GoogleExchange(ctx context.Context, code, state string) (*oauth2.Token, error) {
	if a.google == nil {
		return nil, a.googleErr
	}
	return a.google.Exchange(ctx, code, state)
}

// ImportGoogle reads timed events between from and to. A zero range means
// the current week, Monday to Monday, in the viewer's zone.
func (a *App) ImportGoogle(ctx context.Context, token *oauth2.Token, calendarID string, from, to time.Time) ([]schedule.ClassBlock, error) {
	if a.google == nil {
		return nil, a.googleErr
	}
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: an access token is required", shared.ErrValidation)
	}
	if from.IsZero() || to.IsZero() {
		from = mondayOf(a.now().In(a.loc))
		to = from.AddDate(0, 0, 7)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: import range end must be after its start", shared.ErrValidation)
	}

	blocks, err := a.google.Import(ctx, token, calendarID, from, to)
	if err != nil {
		a.logger.Warn("google calendar import failed", zap.Error(err))
		return nil, err
	}
	a.logger.Info("google calendar imported", zap.Int("classes", len(blocks)))
	return blocks, nil
}

// DiningLocations is the dining table with no-go flags for the given
// preferences.
func (a *App) DiningLocations(favorites, avoid []string) []schedule.DiningLocation {
	return dining.WithPreferences(a.dining, favorites, avoid)
}

// Defaults are the starting preference sets offered to a new user.
type Defaults struct {
	Nutrition preferences.Nutrition `json:"nutrition"`
	Fitness   preferences.Fitness   `json:"fitness"`
}

// PreferenceDefaults returns fresh default preferences.
func (a *App) PreferenceDefaults() Defaults {
	return Defaults{Nutrition: preferences.DefaultNutrition(), Fitness: preferences.DefaultFitness()}
}

// GenerateInput is what a client sends to request a plan.
type GenerateInput struct {
	Classes   []schedule.ClassBlock  `json:"classes"`
	Nutrition *preferences.Nutrition `json:"nutritionPreferences"`
	Fitness   *preferences.Fitness   `json:"fitnessPreferences"`
	WeekStart time.Time              `json:"weekStart"`
}

// GeneratePlan derives the dining table from the nutrition preferences,
// asks the planner for a week and records the model call.
func (a *App) GeneratePlan(ctx context.Context, in GenerateInput) (planner.PlanResult, error) {
	var diningLocs []schedule.DiningLocation
	if in.Nutrition != nil {
		diningLocs = a.DiningLocations(in.Nutrition.FavoriteDiningOptions, in.Nutrition.NoGoDiningOptions)
	}

	res, err := a.planner.GeneratePlan(ctx, planner.RequestInput{
		Classes:   in.Classes,
		Nutrition: in.Nutrition,
		Fitness:   in.Fitness,
		Dining:    diningLocs,
		WeekStart: in.WeekStart,
		Location:  a.loc,
	})
	a.recordMetrics(ctx, res)

	if err != nil {
		a.logger.Warn("plan generation failed",
			zap.String("kind", shared.KindOf(err)),
			zap.String("provider", res.Meta.Provider),
			zap.Error(err))
		return res, err
	}

	a.logger.Info("plan generated",
		zap.String("provider", res.Meta.Provider),
		zap.String("model", res.Meta.Usage.Model),
		zap.Int("prompt_tokens", res.Meta.Usage.PromptTokens),
		zap.Int("completion_tokens", res.Meta.Usage.CompletionTokens),
		zap.Duration("latency", res.Meta.Latency),
		zap.Int("events", len(res.Events)),
		zap.Int("violations", len(res.Violations)))
	return res, nil
}

func (a *App) recordMetrics(ctx context.Context, res planner.PlanResult) {
	if a.metrics == nil {
		return
	}
	// The request may already be cancelled; the row is still wanted.
	ctx = context.WithoutCancel(ctx)
	if err := a.metrics.RecordMeta(ctx, res.Meta, len(res.Violations)); err != nil {
		a.logger.Warn("failed to record metrics", zap.String("agent", res.Meta.AgentName), zap.Error(err))
	}
}

// Usage reports token usage per day for the last n days. It is empty when
// no metrics store is configured.
func (a *App) Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	if a.metrics == nil {
		return []metrics.DailyUsage{}, nil
	}
	usage, err := a.metrics.GetDailyUsage(ctx, days)
	if err != nil {
		return nil, err
	}
	if usage == nil {
		usage = []metrics.DailyUsage{}
	}
	return usage, nil
}

// ExportICS writes the plan as an iCalendar document.
func (a *App) ExportICS(events []schedule.ScheduledEvent) (string, error) {
	ics, err := calendar.Export(events, a.now())
	if err != nil {
		return "", err
	}
	a.logger.Debug("plan exported", zap.Int("events", len(events)))
	return ics, nil
}

// View selects a rendering.
type View string

const (
	ViewList View = "list"
	ViewGrid View = "grid"
)

// ParseView maps a query value to a View; empty means the list.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewList:
		return ViewList, nil
	case ViewGrid:
		return ViewGrid, nil
	}
	return "", fmt.Errorf("%w: unknown view %q, expected list or grid", shared.ErrValidation, s)
}

// Rendered is a list or grid projection. Exactly one of Days and Events
// is set.
type Rendered struct {
	View     View               `json:"view"`
	Timezone string             `json:"timezone"`
	Days     render.Week        `json:"days,omitempty"`
	Events   []render.GridEvent `json:"events,omitempty"`
}

// Render projects classes and events in the viewer's zone. It returns
// render.ErrNoSchedule when there is nothing to show.
func (a *App) Render(view View, classes []schedule.ClassBlock, events []schedule.ScheduledEvent) (Rendered, error) {
	out := Rendered{View: view, Timezone: a.loc.String()}
	var err error
	switch view {
	case ViewList:
		out.Days, err = render.ByDay(classes, events, a.loc)
	case ViewGrid:
		out.Events, err = render.Grid(classes, events, a.loc)
	default:
		return Rendered{}, fmt.Errorf("%w: unknown view %q", shared.ErrValidation, view)
	}
	if err != nil {
		return Rendered{}, err
	}
	return out, nil
}

func mondayOf(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
