package rules

import (
	"github.com/Hasstatas/MFA-scanner/constants"
)

// Finding is one report row produced by evaluating evidence text against a
// strategy. Heuristic evaluations fill only Outcome, Priority, Recommendation
// and Evidence; per-test evaluators also set TestID, SubStrategy and Level.
type Finding struct {
	TestID         string
	SubStrategy    string
	Level          string
	Outcome        constants.Outcome
	Priority       constants.Priority
	Recommendation string
	Evidence       []string
}

// Evaluator turns extracted text into findings for one strategy. Evaluators
// may keep state across files within a single scan (e.g. cross-file identity
// comparisons), so a fresh evaluator is built per batch.
type Evaluator interface {
	Strategy() string
	Evaluate(text, sourceFile string) []Finding
}

// EvaluatorFor returns the per-test evaluator for strategies that have one,
// falling back to heuristic keyword matching otherwise.
func (s *Store) EvaluatorFor(name string) (Evaluator, bool) {
	r, ok := s.Get(name)
	if !ok {
		return nil, false
	}
	switch constants.Strategy(r.Name) {
	case constants.RestrictAdminPrivs:
		return newRAPEvaluator(), true
	case constants.ConfigureMacroSettings:
		return newMacroEvaluator(), true
	default:
		return &heuristicEvaluator{rule: r}, true
	}
}

// heuristicEvaluator wraps flat keyword/regex matching: any hit yields a
// single HIT finding carrying the matched indicators as evidence.
type heuristicEvaluator struct {
	rule *StrategyRule
}

func (e *heuristicEvaluator) Strategy() string { return e.rule.Name }

func (e *heuristicEvaluator) Evaluate(text, _ string) []Finding {
	hits := e.rule.Match(text)
	if len(hits) == 0 {
		return nil
	}
	return []Finding{{
		Outcome:        constants.OutcomeHit,
		Priority:       constants.PriorityMedium,
		Recommendation: "Heuristic match.",
		Evidence:       hits,
	}}
}
