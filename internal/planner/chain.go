package planner

import "github.com/hazyhaar/autoword-vnext/internal/model"

// Stage is one link in the plan validation pipeline. It inspects (and may
// reject) a decoded plan; stages never mutate the plan they're handed.
type Stage func(*model.PlanV1) error

// Chain composes stages into a single validator that runs them in order and
// stops at the first failure, so the caller always gets exactly one
// InvalidPlanError rather than a pile of secondary complaints about a plan
// that was already rejected upstream.
func Chain(stages ...Stage) Stage {
	return func(p *model.PlanV1) error {
		for _, s := range stages {
			if err := s(p); err != nil {
				return err
			}
		}
		return nil
	}
}
