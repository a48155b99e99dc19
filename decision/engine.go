package decision

import (
	"fmt"
	"strings"

	"github.com/hupe1980/qosmesh/core"
)

// Strategy selects how a rule group combines the contributions of fired
// predicates.
type Strategy int

const (
	// StrategyAdditive sums the weights of all fired predicates.
	StrategyAdditive Strategy = iota

	// StrategyMax takes the maximum confidence among fired predicates.
	StrategyMax
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyAdditive:
		return "additive"
	case StrategyMax:
		return "max"
	default:
		return "unknown"
	}
}

// Rule is one evidence predicate within a group. Weight is the additive
// contribution under StrategyAdditive and the competing confidence under
// StrategyMax.
type Rule struct {
	Name    string
	Weight  float64
	Reason  string
	Applies func(s *core.TelemetrySnapshot) bool
}

// ProposalFunc builds the action proposals a group emits when it decides to
// act. fired contains the names of the predicates that contributed, in rule
// declaration order.
type ProposalFunc func(s *core.TelemetrySnapshot, fired []string, reason string) []*core.ActionProposal

// RuleGroup is a named set of rules sharing one combination strategy and one
// action threshold.
type RuleGroup struct {
	Name      string
	Strategy  Strategy
	Threshold float64
	Rules     []Rule
	Propose   ProposalFunc
}

// Evaluate scans the snapshot and returns the group's decision. It is pure:
// the same snapshot always yields the same result and nothing is mutated.
func (g *RuleGroup) Evaluate(s *core.TelemetrySnapshot) *core.DecisionResult {
	var (
		confidence float64
		fired      []string
		reasons    []string
	)
	for _, r := range g.Rules {
		if r.Applies == nil || !r.Applies(s) {
			continue
		}
		fired = append(fired, r.Name)
		reasons = append(reasons, r.Reason)
		switch g.Strategy {
		case StrategyMax:
			if r.Weight > confidence {
				confidence = r.Weight
			}
		default:
			confidence += r.Weight
		}
	}
	confidence = core.ClampConfidence(confidence)

	result := &core.DecisionResult{
		ShouldAct:  confidence >= g.Threshold,
		Confidence: confidence,
		Reason:     strings.Join(reasons, "; "),
	}
	if result.ShouldAct && g.Propose != nil {
		result.Proposals = g.Propose(s, fired, result.Reason)
	}
	return result
}

// Engine holds the named rule groups of the mesh. It is stateless beyond the
// immutable group definitions and safe for concurrent use.
type Engine struct {
	groups map[string]*RuleGroup
}

// NewEngine builds an engine over the provided groups. Group names must be
// unique; later duplicates replace earlier ones.
func NewEngine(groups ...*RuleGroup) *Engine {
	e := &Engine{groups: make(map[string]*RuleGroup, len(groups))}
	for _, g := range groups {
		e.groups[g.Name] = g
	}
	return e
}

// NewDefaultEngine builds an engine with the built-in rule groups, all using
// the given action threshold.
func NewDefaultEngine(threshold float64) *Engine {
	return NewEngine(
		NewQoSRequirementGroup(threshold),
		NewLocationVerificationGroup(threshold),
		NewDeviceHealthGroup(threshold),
	)
}

// Group returns a registered rule group by name.
func (e *Engine) Group(name string) (*RuleGroup, error) {
	g, ok := e.groups[name]
	if !ok {
		return nil, fmt.Errorf("rule group %q: %w", name, core.ErrNotFound)
	}
	return g, nil
}

// Evaluate runs the named group against the snapshot.
func (e *Engine) Evaluate(name string, s *core.TelemetrySnapshot) (*core.DecisionResult, error) {
	g, err := e.Group(name)
	if err != nil {
		return nil, err
	}
	return g.Evaluate(s), nil
}
