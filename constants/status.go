package constants

// Outcome is the Pass/Fail marker written into report rows.
type Outcome string

// Stable values (these exact strings appear in CSV output).
const (
	OutcomeNoText  Outcome = "NO_TEXT"  // extraction produced no readable text
	OutcomeHit     Outcome = "HIT"      // heuristic keyword/regex match
	OutcomeNoMatch Outcome = "NO_MATCH" // file evaluated, nothing matched
	OutcomePass    Outcome = "Pass"     // per-test evaluator: control in place
	OutcomeFail    Outcome = "Fail"     // per-test evaluator: control missing
)

// Priority ranks how urgently a finding should be actioned.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)
