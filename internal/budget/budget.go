// Package budget implements the Budget Controller (C10): a stable
// escalation ladder of optimizer configurations, tried in order until the
// processed text fits a token budget or the ladder runs out.
package budget

import (
	"github.com/lg-tool/lg/internal/langadapter"
	"github.com/lg-tool/lg/internal/literals"
)

// Step is one rung of the escalation ladder.
type Step struct {
	Name   string
	Config langadapter.OptimizerConfig
}

// Ladder is an ordered, fixed sequence of steps. Order must never depend
// on map iteration or any other non-deterministic source (spec.md §4.9).
type Ladder []Step

// Outcome is the result of running a ladder against one file.
type Outcome struct {
	StepName      string
	Result        langadapter.Result
	Tokens        int
	Escalations   int
	BudgetReached bool
}

// Run tries each step of ladder in order, re-tokenizing the processed
// output after each, stopping as soon as tokens(processed) <= maxTokens
// or the ladder is exhausted (in which case the last step's result is
// returned with BudgetReached=false).
func Run(a *langadapter.Adapter, source []byte, relPath string, ladder Ladder, maxTokens int, counter literals.TokenCounter, tokenCount func(string) int) (Outcome, error) {
	var last Outcome
	for i, step := range ladder {
		res, err := langadapter.Run(a, source, relPath, step.Config, counter)
		if err != nil {
			return Outcome{}, err
		}
		tokens := tokenCount(res.ProcessedText)
		last = Outcome{StepName: step.Name, Result: res, Tokens: tokens, Escalations: i}

		if maxTokens <= 0 || tokens <= maxTokens {
			last.BudgetReached = true
			return last, nil
		}
	}
	return last, nil
}
