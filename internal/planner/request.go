package planner

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"fuel-planner/internal/llm"
	"fuel-planner/internal/preferences"
	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

//go:embed system_prompt.md
var systemPrompt string

//go:embed user_prompt.md
var userPrompt string

var userTmpl = template.Must(template.New("user").Parse(userPrompt))

// RequestInput is everything the generator needs to place a week.
type RequestInput struct {
	Classes   []schedule.ClassBlock
	Nutrition *preferences.Nutrition
	Fitness   *preferences.Fitness
	Dining    []schedule.DiningLocation
	// WeekStart is the Monday the plan begins on. When zero it is the
	// Monday on or before the earliest class.
	WeekStart time.Time
	Location  *time.Location
}

// Request is the rendered generation request.
type Request struct {
	System string
	User   string
}

// Prompt converts the request for a TextGenerator.
func (r Request) Prompt() llm.Prompt {
	return llm.Prompt{System: r.System, User: r.User}
}

type userPromptData struct {
	WeekStart       string
	Timezone        string
	Classes         string
	Dining          string
	Nutrition       string
	Fitness         string
	MealTimes       []preferences.MealTime
	WorkoutsPerWeek int
}

// CheckInput reports a shared.ErrValidation when a plan cannot be requested.
func CheckInput(in RequestInput) error {
	if in.Nutrition == nil {
		return fmt.Errorf("%w: nutrition preferences are required", shared.ErrValidation)
	}
	if in.Fitness == nil {
		return fmt.Errorf("%w: fitness preferences are required", shared.ErrValidation)
	}
	if len(in.Classes) == 0 {
		return fmt.Errorf("%w: import a class schedule first", shared.ErrValidation)
	}
	if err := in.Nutrition.Validate(); err != nil {
		return err
	}
	return in.Fitness.Validate()
}

// BuildRequest serializes the constraints and data into a generation
// request. It places nothing itself.
func BuildRequest(in RequestInput) (Request, error) {
	if err := CheckInput(in); err != nil {
		return Request{}, err
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	fitness := in.Fitness.WithDefaults()
	dining := in.Dining
	if dining == nil {
		dining = []schedule.DiningLocation{}
	}

	data := userPromptData{
		WeekStart:       weekStart(in, loc).Format("2006-01-02"),
		Timezone:        loc.String(),
		MealTimes:       in.Nutrition.PreferredMealTimes,
		WorkoutsPerWeek: fitness.WorkoutsPerWeek,
	}
	var err error
	if data.Classes, err = pretty(in.Classes); err != nil {
		return Request{}, err
	}
	if data.Dining, err = pretty(dining); err != nil {
		return Request{}, err
	}
	if data.Nutrition, err = pretty(in.Nutrition); err != nil {
		return Request{}, err
	}
	if data.Fitness, err = pretty(fitness); err != nil {
		return Request{}, err
	}

	var buf bytes.Buffer
	if err := userTmpl.Execute(&buf, data); err != nil {
		return Request{}, fmt.Errorf("failed to render user prompt: %w", err)
	}
	return Request{System: systemPrompt, User: buf.String()}, nil
}

func pretty(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to serialize prompt data: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func weekStart(in RequestInput, loc *time.Location) time.Time {
	ref := in.WeekStart
	if ref.IsZero() {
		for _, c := range in.Classes {
			if ref.IsZero() || c.Interval.Start.Before(ref) {
				ref = c.Interval.Start
			}
		}
	}
	ref = ref.In(loc)
	offset := (int(ref.Weekday()) + 6) % 7
	y, m, d := ref.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
}
