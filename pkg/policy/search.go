package policy

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

// Button labels worth trying first. Tapping these tends to move the app
// forward (dialogs, onboarding, permission prompts) instead of sideways.
var preferredButtons = []string{
	"yes", "ok", "activate", "detail", "more", "access",
	"allow", "check", "agree", "try", "go", "next",
}

// searchBase carries the state shared by all graph-search policies: the app
// under exploration, the restart budget, and the queue of multi-step
// recovery sequences (stop-then-start) drained one action per Select call.
type searchBase struct {
	app         string
	rng         *rand.Rand
	maxRestarts int

	restarts   int
	escapeStep int
	pending    []*core.Action

	// backTried tracks per-state BACK presses. BACK is injected by the
	// policy rather than discovered from the hierarchy, so the graph does
	// not track its tried flag for us.
	backTried map[string]bool
}

func (b *searchBase) popPending() *core.Action {
	if len(b.pending) == 0 {
		return nil
	}
	a := b.pending[0]
	b.pending = b.pending[1:]
	return a
}

// recover escorts the run back into the app after an escape: BACK first,
// then a full stop/start cycle. Each stop/start consumes one restart from
// the budget.
func (b *searchBase) recover() (*core.Action, error) {
	switch b.escapeStep {
	case 0:
		b.escapeStep++
		return &core.Action{Kind: core.ActionBack}, nil
	default:
		b.escapeStep = 0
		return b.restart()
	}
}

func (b *searchBase) restart() (*core.Action, error) {
	if b.restarts >= b.maxRestarts {
		return nil, fmt.Errorf("%w: restart budget (%d) spent", ErrExhausted, b.maxRestarts)
	}
	b.restarts++
	b.pending = append(b.pending, &core.Action{Kind: core.ActionStartApp, AppID: b.app})
	return &core.Action{Kind: core.ActionStopApp, AppID: b.app}, nil
}

func (b *searchBase) markBackTried(fingerprint string) {
	if b.backTried == nil {
		b.backTried = make(map[string]bool)
	}
	b.backTried[fingerprint] = true
}

// searchPolicy implements the four coverage strategies. Naive variants walk
// the current state's frontier and lean on BACK for movement; greedy
// variants additionally navigate through recorded transitions to reach
// frontier states elsewhere in the graph.
type searchPolicy struct {
	searchBase
	name       string
	depthFirst bool
	greedy     bool
}

func (p *searchPolicy) Name() string { return p.name }

func (p *searchPolicy) Select(ctx *Context) (*core.Action, error) {
	if a := p.popPending(); a != nil {
		return a, nil
	}
	if ctx.Current == nil {
		return &core.Action{Kind: core.ActionStartApp, AppID: p.app}, nil
	}
	if ctx.Foreground != "" && ctx.Foreground != p.app {
		return p.recover()
	}
	p.escapeStep = 0

	fp := ctx.Current.Fingerprint
	var candidates []*core.Action
	if ctx.Memory == nil || !ctx.Memory.ShouldDeprioritize(fp) {
		candidates = ctx.Graph.UnexploredActions(fp)
	}
	candidates = p.order(ctx, candidates)

	// For the naive variants BACK participates in the frontier like any
	// widget action: last for depth-first (drain the state before
	// retreating), first for breadth-first. Greedy variants move through
	// recorded transitions instead.
	if !p.greedy && !p.backTried[fp] {
		back := &core.Action{Kind: core.ActionBack}
		if p.depthFirst {
			candidates = append(candidates, back)
		} else {
			candidates = append([]*core.Action{back}, candidates...)
		}
	}

	if len(candidates) > 0 {
		a := candidates[0]
		if a.Kind == core.ActionBack {
			p.markBackTried(fp)
		}
		return a, nil
	}

	if p.greedy {
		if a := p.navigate(ctx, fp); a != nil {
			return a, nil
		}
	}
	return p.restart()
}

// order arranges candidates: optional shuffle, preferred buttons first, and
// for greedy variants widgets never touched anywhere in the graph before
// everything else.
func (p *searchPolicy) order(ctx *Context, candidates []*core.Action) []*core.Action {
	if len(candidates) < 2 {
		return candidates
	}
	out := make([]*core.Action, len(candidates))
	copy(out, candidates)

	if p.rng != nil {
		p.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	sort.SliceStable(out, func(i, j int) bool {
		return isPreferred(out[i]) && !isPreferred(out[j])
	})
	if p.greedy {
		sort.SliceStable(out, func(i, j int) bool {
			return isFresh(ctx, out[i]) && !isFresh(ctx, out[j])
		})
	}
	return out
}

// navigate returns the first step of the recorded path to a reachable state
// that still has unexplored actions, or nil when no such state exists.
// Breadth-first targets the nearest frontier state; depth-first targets the
// most recently discovered one.
func (p *searchPolicy) navigate(ctx *Context, from string) *core.Action {
	var target string
	bestSeq := -1
	for _, fp := range ctx.Graph.ReachableStates(from) {
		if ctx.Graph.FullyExplored(fp) {
			continue
		}
		if ctx.Memory != nil && ctx.Memory.ShouldDeprioritize(fp) {
			continue
		}
		if !p.depthFirst {
			target = fp
			break
		}
		if seq := ctx.Graph.Node(fp).Seq; seq > bestSeq {
			bestSeq = seq
			target = fp
		}
	}
	if target == "" {
		return nil
	}
	steps := ctx.Graph.NavigationSteps(from, target)
	if len(steps) == 0 {
		return nil
	}
	return steps[0].Action
}

func isPreferred(a *core.Action) bool {
	if a.Widget == nil {
		return false
	}
	label := strings.ToLower(a.Widget.Text)
	if label == "" {
		label = strings.ToLower(a.Widget.ContentDesc)
	}
	if label == "" {
		return false
	}
	for _, b := range preferredButtons {
		if strings.Contains(label, b) {
			return true
		}
	}
	return false
}

func isFresh(ctx *Context, a *core.Action) bool {
	if a.Widget == nil {
		return false
	}
	return !ctx.Graph.WidgetTried(core.WidgetSignature(a.Widget))
}
