// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// pricing is USD per million tokens (input, output) for models with known
// prices.
var pricing = map[string][2]float64{
	"claude-3-5-sonnet-20241022": {3, 15},
	"claude-3-5-haiku-20241022":  {0.8, 4},
	"claude-3-opus-20240229":     {15, 75},
	"claude-sonnet-4-20250514":   {3, 15},
	"claude-opus-4-20250514":     {15, 75},
}

// Call records one API call.
type Call struct {
	PaperID      string
	Operation    string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}

// Usage accumulates token counts across a run. It is safe for concurrent
// use.
type Usage struct {
	Model string

	mu    sync.Mutex
	calls []Call
}

// Record adds one call to the ledger.
func (u *Usage) Record(c Call) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls = append(u.calls, c)
}

// Calls returns a copy of the recorded calls.
func (u *Usage) Calls() []Call {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Call(nil), u.calls...)
}

// Totals returns summed input and output tokens, optionally restricted to
// one paper (empty paperID means all).
func (u *Usage) Totals(paperID string) (input, output int) {
	for _, c := range u.Calls() {
		if paperID != "" && c.PaperID != paperID {
			continue
		}
		input += c.InputTokens
		output += c.OutputTokens
	}
	return input, output
}

// Cost estimates the USD cost of the given token counts. ok is false when
// the model has no known price.
func (u *Usage) Cost(input, output int) (cost float64, ok bool) {
	p, ok := pricing[u.Model]
	if !ok {
		return 0, false
	}
	return float64(input)/1e6*p[0] + float64(output)/1e6*p[1], true
}

// Papers returns the distinct paper IDs in the order first recorded.
func (u *Usage) Papers() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range u.Calls() {
		if c.PaperID != "" && !seen[c.PaperID] {
			seen[c.PaperID] = true
			ids = append(ids, c.PaperID)
		}
	}
	return ids
}

// Report writes per-paper and total token counts to w.
func (u *Usage) Report(w io.Writer) {
	papers := u.Papers()
	for _, id := range papers {
		in, out := u.Totals(id)
		fmt.Fprintf(w, "  %s: %d input, %d output tokens%s\n", id, in, out, u.costSuffix(in, out))
	}
	in, out := u.Totals("")
	fmt.Fprintf(w, "LLM usage (%s): %d calls, %d input, %d output tokens%s\n",
		u.Model, len(u.Calls()), in, out, u.costSuffix(in, out))
	if n := len(papers); n > 0 {
		if cost, ok := u.Cost(in, out); ok {
			fmt.Fprintf(w, "  average per paper: $%.4f\n", cost/float64(n))
		}
	}
}

func (u *Usage) costSuffix(in, out int) string {
	if cost, ok := u.Cost(in, out); ok {
		return fmt.Sprintf(" ($%.4f)", cost)
	}
	return ""
}
