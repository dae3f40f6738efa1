// Package policy implements the exploration strategies that pick the next
// action from the current state, the transition graph, and the revisit
// memory. Policies are pure deciders: they never touch the device.
package policy

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
	"github.com/devicelab-dev/uiexplorer/pkg/graph"
	"github.com/devicelab-dev/uiexplorer/pkg/memory"
)

// Policy names accepted by New.
const (
	NameDFS       = "dfs"
	NameBFS       = "bfs"
	NameDFSGreedy = "dfs_greedy"
	NameBFSGreedy = "bfs_greedy"
	NameTask      = "task"
)

// ErrExhausted is returned by Select when the policy has no action left to
// propose: every discovered state is fully explored and app restarts have
// been used up.
var ErrExhausted = errors.New("exploration frontier exhausted")

// Context carries everything a policy may consult for one decision.
type Context struct {
	// Current is the state the device is showing now.
	Current *core.UIState

	Graph  *graph.StateGraph
	Memory *memory.Memory

	// Goals are the task keywords for goal-directed exploration. Empty for
	// coverage-only policies.
	Goals []string

	// Foreground is the package currently in the foreground, which may
	// differ from the app under exploration after an unintended escape.
	Foreground string
}

// Policy selects the next action to execute. Implementations keep internal
// position state (DFS stack depth, restart budget) across calls within a
// single run and must not be reused between runs.
type Policy interface {
	Name() string
	Select(ctx *Context) (*core.Action, error)
}

// Options configures policy construction.
type Options struct {
	// AppPackage is the package identifier of the app under exploration.
	AppPackage string

	// RandomInput shuffles candidate actions before preference sorting, so
	// repeated runs take different paths through ties.
	RandomInput bool

	// Seed for the shuffle source. Ignored unless RandomInput is set; zero
	// means an unseeded deterministic source.
	Seed int64

	// Goals are the task keywords. Required for the task policy.
	Goals []string

	// MaxRestarts bounds how many times the policy may restart the app to
	// recover from dead ends or escapes. Zero selects the default.
	MaxRestarts int
}

const defaultMaxRestarts = 5

// New constructs the named policy.
func New(name string, opts Options) (Policy, error) {
	if opts.AppPackage == "" {
		return nil, fmt.Errorf("policy %s: app package required", name)
	}
	if opts.MaxRestarts <= 0 {
		opts.MaxRestarts = defaultMaxRestarts
	}

	var rng *rand.Rand
	if opts.RandomInput {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	base := searchBase{
		app:         opts.AppPackage,
		rng:         rng,
		maxRestarts: opts.MaxRestarts,
	}

	switch name {
	case NameDFS:
		return &searchPolicy{searchBase: base, name: NameDFS, depthFirst: true}, nil
	case NameBFS:
		return &searchPolicy{searchBase: base, name: NameBFS, depthFirst: false}, nil
	case NameDFSGreedy:
		return &searchPolicy{searchBase: base, name: NameDFSGreedy, depthFirst: true, greedy: true}, nil
	case NameBFSGreedy:
		return &searchPolicy{searchBase: base, name: NameBFSGreedy, depthFirst: false, greedy: true}, nil
	case NameTask:
		if len(opts.Goals) == 0 {
			return nil, fmt.Errorf("policy %s: task keywords required", name)
		}
		fallback := &searchPolicy{searchBase: base, name: NameDFSGreedy, depthFirst: true, greedy: true}
		return &taskPolicy{app: opts.AppPackage, goals: opts.Goals, fallback: fallback}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}
