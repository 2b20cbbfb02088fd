package compara

import (
	"context"
	"fmt"
	"log/slog"
)

// StepFunc performs one pipeline step and reports how many rows it
// inserted (or -1 when row counts do not apply).
type StepFunc func(ctx context.Context) (int64, error)

// Step is one named unit of the subset pipeline. Steps run in the
// order they were added; Requires lists steps that must have completed
// first. The pipeline historically relied on call order alone; making
// prerequisites explicit turns an ordering mistake into a loud error
// instead of a silently inconsistent subset.
type Step struct {
	Name     string
	Requires []string
	Run      StepFunc
}

// OrderingError reports a step whose prerequisite has not run.
type OrderingError struct {
	Step    string
	Missing string
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf(
		"step %q requires %q, which has not run", e.Step, e.Missing,
	)
}

// StepError wraps a step failure with the step's name.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Plan is an ordered sequence of steps with prerequisite checking.
type Plan struct {
	steps []Step
	names map[string]bool
	done  map[string]bool
	rows  map[string]int64
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{
		names: make(map[string]bool),
		done:  make(map[string]bool),
		rows:  make(map[string]int64),
	}
}

// Add appends a step. Duplicate names and prerequisites naming unknown
// steps are rejected immediately so a miswired pipeline fails before it
// touches the database.
func (p *Plan) Add(s Step) error {
	if s.Name == "" {
		return fmt.Errorf("step has no name")
	}
	if s.Run == nil {
		return fmt.Errorf("step %q has no run function", s.Name)
	}
	if p.names[s.Name] {
		return fmt.Errorf("step %q added twice", s.Name)
	}
	for _, req := range s.Requires {
		if !p.names[req] {
			return &OrderingError{Step: s.Name, Missing: req}
		}
	}
	p.names[s.Name] = true
	p.steps = append(p.steps, s)
	return nil
}

// MustAdd is Add for statically-known plans; it panics on a wiring
// mistake, which can only be a programming error.
func (p *Plan) MustAdd(s Step) {
	if err := p.Add(s); err != nil {
		panic(err)
	}
}

// Execute runs every step in order, checking prerequisites before each
// one and recording inserted row counts. The first failure stops the
// plan.
func (p *Plan) Execute(ctx context.Context) error {
	for _, s := range p.steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, req := range s.Requires {
			if !p.done[req] {
				return &OrderingError{Step: s.Name, Missing: req}
			}
		}

		n, err := s.Run(ctx)
		if err != nil {
			return &StepError{Step: s.Name, Err: err}
		}
		p.done[s.Name] = true
		if n >= 0 {
			p.rows[s.Name] += n
			slog.Debug("step complete", "step", s.Name, "rows", n)
		} else {
			slog.Debug("step complete", "step", s.Name)
		}
	}
	return nil
}

// Len reports the number of steps in the plan.
func (p *Plan) Len() int { return len(p.steps) }

// Rows returns inserted row counts keyed by step name, covering the
// steps that have executed so far.
func (p *Plan) Rows() map[string]int64 {
	res := make(map[string]int64, len(p.rows))
	for k, v := range p.rows {
		res[k] = v
	}
	return res
}
