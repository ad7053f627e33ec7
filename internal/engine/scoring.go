package engine

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"k8s.io/klog/v2"
)

// ScoreContext is what a ScoringRule sees when a pair is matched.
// MatchCount already includes the new pair.
type ScoreContext struct {
	Score      int // Score before this match
	MatchCount int
	TotalPairs int
	Streak     int // Consecutive matches, including this one
}

// ScoringRule decides how many points a confirmed match is worth.
// Negative results are treated as zero.
type ScoringRule interface {
	Points(sc ScoreContext) int
}

// PerPair awards a fixed number of points for every pair.
type PerPair int

func (p PerPair) Points(ScoreContext) int { return int(p) }

// DefaultScoring gives one point per pair.
const DefaultScoring = PerPair(1)

// ExprRule computes points with an expr-lang expression over the variables
// score, matches, pairs and streak, e.g. "streak > 1 ? 2 : 1".
type ExprRule struct {
	source   string
	program  *exprvm.Program
	fallback ScoringRule
}

// NewExprRule compiles expression. It must evaluate to an int.
func NewExprRule(expression string) (*ExprRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("scoring expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(exprEnv(ScoreContext{})),
		exprlang.AsInt(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile scoring expression %q: %w", expression, err)
	}
	return &ExprRule{source: expression, program: program, fallback: DefaultScoring}, nil
}

// Points runs the expression. Runtime errors are logged and fall back to
// DefaultScoring so a match is never lost.
func (r *ExprRule) Points(sc ScoreContext) int {
	out, err := exprlang.Run(r.program, exprEnv(sc))
	if err != nil {
		klog.Errorf("scoring expression %q failed: %v", r.source, err)
		return r.fallback.Points(sc)
	}
	points, ok := out.(int)
	if !ok {
		klog.Errorf("scoring expression %q returned %T, not int", r.source, out)
		return r.fallback.Points(sc)
	}
	return points
}

func (r *ExprRule) String() string { return r.source }

func exprEnv(sc ScoreContext) map[string]any {
	return map[string]any{
		"score":   sc.Score,
		"matches": sc.MatchCount,
		"pairs":   sc.TotalPairs,
		"streak":  sc.Streak,
	}
}
