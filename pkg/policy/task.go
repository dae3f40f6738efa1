package policy

import (
	"sort"
	"strings"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
	"github.com/devicelab-dev/uiexplorer/pkg/snapshot"
)

// taskPolicy steers exploration toward screens and widgets matching the task
// keywords. When nothing on the current screen or in the known graph looks
// relevant it degrades to greedy depth-first coverage, so a vague task still
// yields a useful run.
type taskPolicy struct {
	app      string
	goals    []string
	fallback *searchPolicy
}

func (p *taskPolicy) Name() string { return NameTask }

func (p *taskPolicy) Select(ctx *Context) (*core.Action, error) {
	if ctx.Current == nil {
		return p.fallback.Select(ctx)
	}
	if ctx.Foreground != "" && ctx.Foreground != p.app {
		return p.fallback.Select(ctx)
	}

	fp := ctx.Current.Fingerprint
	if ctx.Memory != nil && ctx.Memory.ShouldDeprioritize(fp) {
		return p.fallback.Select(ctx)
	}

	if a := p.bestLocal(ctx.Graph.UnexploredActions(fp)); a != nil {
		return a, nil
	}
	if a := p.towardRelevantState(ctx, fp); a != nil {
		return a, nil
	}
	return p.fallback.Select(ctx)
}

// bestLocal returns the highest-scoring unexplored action on the current
// screen, or nil when none of them mentions a task keyword.
func (p *taskPolicy) bestLocal(candidates []*core.Action) *core.Action {
	type scored struct {
		action *core.Action
		score  int
	}
	var relevant []scored
	for _, a := range candidates {
		if s := p.score(a.Widget); s > 0 {
			relevant = append(relevant, scored{a, s})
		}
	}
	if len(relevant) == 0 {
		return nil
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].score > relevant[j].score
	})
	return relevant[0].action
}

// towardRelevantState walks recorded transitions toward the nearest known
// state whose content matches a keyword and still has work left.
func (p *taskPolicy) towardRelevantState(ctx *Context, from string) *core.Action {
	for _, fp := range ctx.Graph.ReachableStates(from) {
		node := ctx.Graph.Node(fp)
		if node == nil || ctx.Graph.FullyExplored(fp) {
			continue
		}
		if ctx.Memory != nil && ctx.Memory.ShouldDeprioritize(fp) {
			continue
		}
		if !snapshot.MatchesKeywords(node.State, p.goals) {
			continue
		}
		if steps := ctx.Graph.NavigationSteps(from, fp); len(steps) > 0 {
			return steps[0].Action
		}
	}
	return nil
}

// score counts how many task keywords the widget's visible text, content
// description, or resource id mention.
func (p *taskPolicy) score(w *core.Widget) int {
	if w == nil {
		return 0
	}
	haystack := strings.ToLower(w.Text + " " + w.ContentDesc + " " + w.ResourceID)
	n := 0
	for _, kw := range p.goals {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			n++
		}
	}
	return n
}
