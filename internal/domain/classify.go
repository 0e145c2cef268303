package domain

import (
	"math"
	"strings"
)

// Sentinel is the "not measured" placeholder stored for blank or unparseable
// readings. It is never a real zero and never counts as a violation.
const Sentinel = 0.0

// Status is the per-parameter classification shown on the dashboard.
type Status string

const (
	StatusOK      Status = "OK"
	StatusOutside Status = "Fora"
	StatusNoData  Status = "Sem dado"
)

// Verdict is the aggregate compliance label.
type Verdict string

const (
	VerdictApproved Verdict = "Aprovado"
	VerdictRejected Verdict = "Reprovado"
)

// Rule bounds one parameter. Min and Max are inclusive; use math.Inf for an
// open side. Label is the name reported in the problem list.
type Rule struct {
	Parameter Parameter
	Label     string
	Min       float64
	Max       float64
}

// Between builds a rule requiring min <= v <= max.
func Between(p Parameter, label string, minV, maxV float64) Rule {
	return Rule{Parameter: p, Label: label, Min: minV, Max: maxV}
}

// AtLeast builds a rule requiring v >= minV.
func AtLeast(p Parameter, label string, minV float64) Rule {
	return Rule{Parameter: p, Label: label, Min: minV, Max: math.Inf(1)}
}

// AtMost builds a rule requiring v <= maxV.
func AtMost(p Parameter, label string, maxV float64) Rule {
	return Rule{Parameter: p, Label: label, Min: math.Inf(-1), Max: maxV}
}

// Evaluate classifies a single reading.
func (r Rule) Evaluate(v float64) Status {
	if v == Sentinel {
		return StatusNoData
	}
	if v < r.Min || v > r.Max {
		return StatusOutside
	}
	return StatusOK
}

// Ruleset is an ordered list of rules. Order determines the problem list.
type Ruleset []Rule

// DefaultRuleset holds the CONAMA 357/2005 class 2 fresh-water limits.
func DefaultRuleset() Ruleset {
	return Ruleset{
		Between(ParamPH, "pH", 6.0, 9.0),
		AtLeast(ParamDissolvedOxygen, "OD", 5.0),
		AtMost(ParamTurbidity, "Turbidez", 100.0),
	}
}

// Outcome is the classification of one record.
type Outcome struct {
	Statuses map[Parameter]Status
	Problems []string
	Verdict  Verdict
}

// ProblemCount is the number of violated rules.
func (o Outcome) ProblemCount() int {
	return len(o.Problems)
}

// ProblemList joins the violated rule labels, e.g. "pH, OD".
func (o Outcome) ProblemList() string {
	return strings.Join(o.Problems, ", ")
}

// Status returns the status recorded for p, or "" when no rule covers it.
func (o Outcome) Status(p Parameter) Status {
	return o.Statuses[p]
}

// Classify evaluates every rule against m. A parameter with no reading is
// treated as the sentinel.
func (rs Ruleset) Classify(m Measurements) Outcome {
	out := Outcome{
		Statuses: make(map[Parameter]Status, len(rs)),
		Verdict:  VerdictApproved,
	}
	for _, rule := range rs {
		status := rule.Evaluate(m.Value(rule.Parameter))
		out.Statuses[rule.Parameter] = status
		if status == StatusOutside {
			out.Problems = append(out.Problems, rule.Label)
		}
	}
	if len(out.Problems) > 0 {
		out.Verdict = VerdictRejected
	}
	return out
}

// Violations counts violated rules per parameter across records.
func Violations(records []Record) map[Parameter]int {
	counts := make(map[Parameter]int)
	for _, r := range records {
		for p, s := range r.Outcome.Statuses {
			if s == StatusOutside {
				counts[p]++
			}
		}
	}
	return counts
}
