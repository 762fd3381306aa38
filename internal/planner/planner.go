package planner

import (
	"context"
	"fmt"
	"time"

	"fuel-planner/internal/config"
	"fuel-planner/internal/llm"
	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

const agentName = "Planner"

// Options tune a Planner.
type Options struct {
	// Timeout bounds the generator call. Zero means the caller's context only.
	Timeout time.Duration
	// Policy is config.ValidationFlag or config.ValidationReject.
	Policy   string
	Location *time.Location
}

// Planner turns preferences and a class schedule into a validated plan
// with one generator call.
type Planner struct {
	textGen llm.TextGenerator
	opts    Options
}

// PlanResult is a generated week. Meta is filled whenever the generator
// was reached, including when its answer was unusable.
type PlanResult struct {
	Events     []schedule.ScheduledEvent `json:"events"`
	Violations []Violation               `json:"violations"`
	Meta       shared.AgentMeta          `json:"-"`
}

// NewPlanner creates a new Planner instance.
func NewPlanner(textGen llm.TextGenerator, opts Options) *Planner {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Policy == "" {
		opts.Policy = config.ValidationFlag
	}
	return &Planner{textGen: textGen, opts: opts}
}

// GeneratePlan builds the request, calls the generator once, normalizes
// the answer and checks it. Invalid input fails before the generator is
// called. Nothing is retried.
func (p *Planner) GeneratePlan(ctx context.Context, in RequestInput) (PlanResult, error) {
	if in.Location == nil {
		in.Location = p.opts.Location
	}
	req, err := BuildRequest(in)
	if err != nil {
		return PlanResult{}, err
	}

	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, req.Prompt())
	meta := shared.AgentMeta{
		AgentName: agentName,
		Provider:  llm.ProviderName(p.textGen),
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return PlanResult{Meta: meta}, fmt.Errorf("failed to generate plan: %w", err)
	}

	events, err := NormalizeResponseIn(resp.Content, in.Location)
	if err != nil {
		return PlanResult{Meta: meta}, err
	}

	violations := Validate(events, ValidationInput{
		Classes:   in.Classes,
		Dining:    in.Dining,
		Nutrition: in.Nutrition,
		Fitness:   in.Fitness,
		Location:  in.Location,
	})
	if violations == nil {
		violations = []Violation{}
	}

	if len(violations) > 0 && p.opts.Policy == config.ValidationReject {
		return PlanResult{Violations: violations, Meta: meta}, fmt.Errorf(
			"%w: generated plan broke %d constraint(s), first: %s",
			shared.ErrValidation, len(violations), violations[0].Message)
	}
	return PlanResult{Events: events, Violations: violations, Meta: meta}, nil
}
