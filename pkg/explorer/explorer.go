// Package explorer runs the exploration loop: observe the screen, fold the
// state into the graph, ask the policy for the next action, execute it, and
// stop when the policy is exhausted or the budget runs out.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
	"github.com/devicelab-dev/uiexplorer/pkg/graph"
	"github.com/devicelab-dev/uiexplorer/pkg/logger"
	"github.com/devicelab-dev/uiexplorer/pkg/memory"
	"github.com/devicelab-dev/uiexplorer/pkg/policy"
	"github.com/devicelab-dev/uiexplorer/pkg/snapshot"
)

// Status is the controller's terminal (or current) state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusTimedOut  Status = "timed_out"
	StatusAborted   Status = "aborted"
)

// Budget bounds a run. Zero values disable the corresponding bound.
type Budget struct {
	// MaxEvents caps the number of exploration actions executed.
	MaxEvents int

	// Timeout caps wall-clock duration, measured from Run start.
	Timeout time.Duration

	// MaxUniqueScreens caps the number of distinct states collected.
	MaxUniqueScreens int
}

// Section is a named region of the app recognized by keyword match against
// screen content. The report records whether exploration ever reached it.
type Section struct {
	Name     string
	Keywords []string
}

// SectionResult is the per-section outcome of a run.
type SectionResult struct {
	Name string `json:"name"`

	Reached bool `json:"reached"`

	// FirstSeenEvent is the event counter value when the section was first
	// entered. Meaningless unless Reached.
	FirstSeenEvent int `json:"firstSeenEvent,omitempty"`
}

// Result summarizes a finished run.
type Result struct {
	Status        Status          `json:"status"`
	Reason        string          `json:"reason,omitempty"`
	Events        int             `json:"events"`
	UniqueScreens int             `json:"uniqueScreens"`
	Sections      []SectionResult `json:"sections,omitempty"`
	StartedAt     time.Time       `json:"startedAt"`
	Duration      time.Duration   `json:"duration"`

	// Partial is set when the run ended before the policy was exhausted
	// (budget, cancellation, or abort).
	Partial bool `json:"partial"`

	// History is the executed action trail, in order.
	History []StepRecord `json:"history,omitempty"`
}

// StepRecord is one executed action in the run's navigation history.
type StepRecord struct {
	Event  int    `json:"event"`
	Action string `json:"action"`
	From   string `json:"from,omitempty"`
	Failed bool   `json:"failed,omitempty"`
}

// Options configures a Controller.
type Options struct {
	AppPackage string
	Budget     Budget
	Sections   []Section

	// ActionDelay is the settle pause after each executed action, giving
	// animations and transitions time to finish before the next capture.
	ActionDelay time.Duration
}

// Controller owns one exploration run. Single-threaded: all device I/O and
// graph mutation happen on the goroutine calling Run. External cancellation
// arrives through the run context and is honored at step boundaries.
type Controller struct {
	snap   *snapshot.Snapshotter
	act    core.Actuator
	pol    policy.Policy
	mem    *memory.Memory
	graph  *graph.StateGraph
	opts   Options
	status Status

	sections []SectionResult
	events   int
	history  []StepRecord
}

// New creates a Controller. The memory is borrowed, not owned: it is flushed
// with Persist only when the run ends in Completed or TimedOut.
func New(snap *snapshot.Snapshotter, act core.Actuator, pol policy.Policy, mem *memory.Memory, opts Options) *Controller {
	c := &Controller{
		snap:   snap,
		act:    act,
		pol:    pol,
		mem:    mem,
		graph:  graph.New(),
		opts:   opts,
		status: StatusIdle,
	}
	for _, s := range opts.Sections {
		c.sections = append(c.sections, SectionResult{Name: s.Name})
	}
	return c
}

// Graph returns the transition graph collected so far.
func (c *Controller) Graph() *graph.StateGraph { return c.graph }

// Status returns the controller status.
func (c *Controller) Status() Status { return c.status }

// Run drives exploration until the policy is exhausted, the budget is spent,
// the context is cancelled, or a fatal device error occurs. The returned
// error is non-nil only for aborted runs and carries the cause.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	c.status = StatusRunning
	started := time.Now()

	finish := func(status Status, reason string, cause error) (*Result, error) {
		c.status = status
		res := &Result{
			Status:        status,
			Reason:        reason,
			Events:        c.events,
			UniqueScreens: c.graph.Len(),
			Sections:      c.sections,
			StartedAt:     started,
			Duration:      time.Since(started),
			Partial:       status != StatusCompleted,
			History:       c.history,
		}
		// An aborted run must leave the on-disk memory byte-identical to
		// its pre-run contents, so only clean terminations persist.
		if status != StatusAborted {
			if err := c.mem.Persist(); err != nil {
				logger.Error("persist revisit memory: %v", err)
			}
		}
		logger.Info("exploration finished: status=%s reason=%q events=%d screens=%d",
			status, reason, c.events, c.graph.Len())
		return res, cause
	}

	if err := c.execute(&core.Action{Kind: core.ActionStartApp, AppID: c.opts.AppPackage}); err != nil {
		return finish(StatusAborted, "app launch failed", err)
	}
	c.settle()

	var prev *core.UIState
	var last *core.Action

	for {
		if reason := c.budgetSpent(ctx, started); reason != "" {
			return finish(StatusTimedOut, reason, nil)
		}

		state, err := c.observe()
		if err != nil {
			return finish(StatusAborted, "screen capture failed", err)
		}

		_, fresh := c.graph.UpsertState(state, snapshot.DiscoverActions(state))
		c.mem.RecordVisit(state.Fingerprint)
		c.trackSections(state)
		if fresh {
			logger.Info("new screen %s (%s), %d total", shortFP(state.Fingerprint), state.Activity, c.graph.Len())
		}

		if last != nil && prev != nil {
			if err := c.graph.RecordEdge(prev.Fingerprint, last, state.Fingerprint); err != nil {
				logger.Warn("record transition: %v", err)
			}
			if c.graph.FullyExplored(prev.Fingerprint) {
				c.mem.MarkFullyExpanded(prev.Fingerprint)
			}
		}

		foreground, err := c.act.ForegroundPackage()
		if err != nil {
			if core.IsFatal(err) {
				return finish(StatusAborted, "device lost", err)
			}
			foreground = ""
		}

		action, err := c.pol.Select(&policy.Context{
			Current:    state,
			Graph:      c.graph,
			Memory:     c.mem,
			Foreground: foreground,
		})
		if err != nil {
			if errors.Is(err, policy.ErrExhausted) {
				return finish(StatusCompleted, "frontier exhausted", nil)
			}
			return finish(StatusAborted, "policy failure", err)
		}

		logger.Debug("step %d: %s", c.events+1, action.Describe())
		execErr := c.execute(action)
		c.events++
		action.Tried = true
		c.history = append(c.history, StepRecord{
			Event:  c.events,
			Action: action.Describe(),
			From:   state.Fingerprint,
			Failed: execErr != nil,
		})
		if execErr != nil {
			if core.IsFatal(execErr) {
				return finish(StatusAborted, "device lost", execErr)
			}
			// A transient failure already retried once: skip the action
			// and let the next observation resynchronize.
			logger.Warn("action %s failed: %v", action.Describe(), execErr)
			last = nil
			prev = nil
		} else {
			last = action
			prev = state
		}
		c.settle()
	}
}

// observe captures the current state, retrying once on transient failures.
func (c *Controller) observe() (*core.UIState, error) {
	state, err := c.snap.Observe()
	if err != nil && core.IsTransient(err) {
		logger.Warn("capture failed, retrying: %v", err)
		state, err = c.snap.Observe()
	}
	return state, err
}

// execute runs one action, retrying once on transient failures.
func (c *Controller) execute(a *core.Action) error {
	_, err := c.act.Execute(a)
	if err != nil && core.IsTransient(err) {
		logger.Warn("action failed, retrying: %v", err)
		_, err = c.act.Execute(a)
	}
	return err
}

func (c *Controller) settle() {
	if c.opts.ActionDelay > 0 {
		time.Sleep(c.opts.ActionDelay)
	}
}

func (c *Controller) budgetSpent(ctx context.Context, started time.Time) string {
	if ctx.Err() != nil {
		return "cancelled"
	}
	b := c.opts.Budget
	if b.MaxEvents > 0 && c.events >= b.MaxEvents {
		return fmt.Sprintf("event budget (%d) reached", b.MaxEvents)
	}
	if b.Timeout > 0 && time.Since(started) >= b.Timeout {
		return fmt.Sprintf("time budget (%s) reached", b.Timeout)
	}
	if b.MaxUniqueScreens > 0 && c.graph.Len() >= b.MaxUniqueScreens {
		return fmt.Sprintf("unique screen budget (%d) reached", b.MaxUniqueScreens)
	}
	return ""
}

func (c *Controller) trackSections(state *core.UIState) {
	for i := range c.sections {
		if c.sections[i].Reached {
			continue
		}
		if snapshot.MatchesKeywords(state, c.opts.Sections[i].Keywords) {
			c.sections[i].Reached = true
			c.sections[i].FirstSeenEvent = c.events
			logger.Info("reached section %q at event %d", c.sections[i].Name, c.events)
		}
	}
}

func shortFP(fp string) string {
	if len(fp) > 10 {
		return fp[:10]
	}
	return fp
}
