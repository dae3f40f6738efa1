// Package graph holds the UI transition graph collected during one
// exploration run: nodes are deduplicated UI states, edges are the actions
// observed to move between them. Single-writer; the controller owns the
// graph for the run's duration and hands a read-only view to downstream
// analysis afterwards.
package graph

import (
	"fmt"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

// Node is one deduplicated UI state together with the actions discovered
// there.
type Node struct {
	State *core.UIState

	// Actions discovered at this state, in discovery order. Merging a
	// re-observation appends previously-unseen actions only.
	Actions []*core.Action

	// Seq is the discovery sequence number (0 = first state seen).
	Seq int

	actionIdx map[string]*core.Action
}

// Edge records one observed transition. Edges are append-only: a recorded
// transition is never removed, even if later found non-reproducible.
type Edge struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Action *core.Action `json:"action"`
}

// StateGraph is the append-only directed graph keyed by state fingerprint.
type StateGraph struct {
	nodes   map[string]*Node
	order   []string // fingerprints in discovery order
	edges   []*Edge
	edgeSet map[string]bool
}

// New creates an empty StateGraph.
func New() *StateGraph {
	return &StateGraph{
		nodes:   make(map[string]*Node),
		edgeSet: make(map[string]bool),
	}
}

// UpsertState inserts the state or merges it into the existing node with the
// same fingerprint. Returns the node and whether this was a first-time
// observation. On merge, actions not yet known at the node are appended;
// the stored UIState itself is never replaced.
func (g *StateGraph) UpsertState(state *core.UIState, actions []*core.Action) (*Node, bool) {
	if node, ok := g.nodes[state.Fingerprint]; ok {
		for _, a := range actions {
			if sig := a.Signature(); !nodeHasAction(node, sig) {
				node.Actions = append(node.Actions, a)
				node.actionIdx[sig] = a
			}
		}
		return node, false
	}

	node := &Node{
		State:     state,
		Seq:       len(g.order),
		actionIdx: make(map[string]*core.Action, len(actions)),
	}
	for _, a := range actions {
		sig := a.Signature()
		if nodeHasAction(node, sig) {
			continue
		}
		node.Actions = append(node.Actions, a)
		node.actionIdx[sig] = a
	}
	g.nodes[state.Fingerprint] = node
	g.order = append(g.order, state.Fingerprint)
	return node, true
}

func nodeHasAction(n *Node, sig string) bool {
	_, ok := n.actionIdx[sig]
	return ok
}

// RecordEdge appends a transition. Idempotent when the identical edge
// already exists. Unknown endpoints are an error: states must be upserted
// before edges between them are recorded.
func (g *StateGraph) RecordEdge(from string, action *core.Action, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("record edge: unknown source state %s", from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("record edge: unknown destination state %s", to)
	}

	key := from + "|" + action.Signature() + "|" + to
	if g.edgeSet[key] {
		return nil
	}
	g.edgeSet[key] = true
	g.edges = append(g.edges, &Edge{From: from, To: to, Action: action})
	return nil
}

// Node returns the node for a fingerprint, or nil.
func (g *StateGraph) Node(fingerprint string) *Node {
	return g.nodes[fingerprint]
}

// UnexploredActions returns the actions at the node not yet marked tried,
// in discovery order. Nil for unknown fingerprints.
func (g *StateGraph) UnexploredActions(fingerprint string) []*core.Action {
	node := g.nodes[fingerprint]
	if node == nil {
		return nil
	}
	var out []*core.Action
	for _, a := range node.Actions {
		if !a.Tried {
			out = append(out, a)
		}
	}
	return out
}

// FullyExplored reports whether every action discovered at the node has been
// tried. Unknown fingerprints count as explored (nothing to do there).
func (g *StateGraph) FullyExplored(fingerprint string) bool {
	node := g.nodes[fingerprint]
	if node == nil {
		return true
	}
	for _, a := range node.Actions {
		if !a.Tried {
			return false
		}
	}
	return true
}

// Len returns the number of distinct states.
func (g *StateGraph) Len() int {
	return len(g.order)
}

// Fingerprints returns all fingerprints in discovery order.
func (g *StateGraph) Fingerprints() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all recorded transitions in record order.
func (g *StateGraph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// WidgetTried reports whether an action on a widget with the given signature
// has been tried from any state in the graph. Greedy policies use this to
// prefer widgets never touched anywhere.
func (g *StateGraph) WidgetTried(widgetSig string) bool {
	if widgetSig == "" {
		return false
	}
	for _, fp := range g.order {
		for _, a := range g.nodes[fp].Actions {
			if a.Tried && a.Widget != nil && core.WidgetSignature(a.Widget) == widgetSig {
				return true
			}
		}
	}
	return false
}

// NavigationSteps returns the shortest recorded action path from one state
// to another, or nil when no path exists. Used by policies to backtrack to
// frontier states through transitions already proven to work.
func (g *StateGraph) NavigationSteps(from, to string) []*Edge {
	if from == to {
		return nil
	}
	if _, ok := g.nodes[from]; !ok {
		return nil
	}

	// Breadth-first over recorded edges.
	prev := make(map[string]*Edge)
	visited := map[string]bool{from: true}
	queue := []string{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			if e.From != cur || visited[e.To] {
				continue
			}
			visited[e.To] = true
			prev[e.To] = e
			if e.To == to {
				return g.assemblePath(prev, from, to)
			}
			queue = append(queue, e.To)
		}
	}
	return nil
}

func (g *StateGraph) assemblePath(prev map[string]*Edge, from, to string) []*Edge {
	var path []*Edge
	for cur := to; cur != from; {
		e := prev[cur]
		if e == nil {
			return nil
		}
		path = append([]*Edge{e}, path...)
		cur = e.From
	}
	return path
}

// ReachableStates returns fingerprints reachable from the given state via
// recorded edges, nearest first (breadth-first order), excluding the state
// itself.
func (g *StateGraph) ReachableStates(from string) []string {
	visited := map[string]bool{from: true}
	queue := []string{from}
	var out []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			if e.From != cur || visited[e.To] {
				continue
			}
			visited[e.To] = true
			out = append(out, e.To)
			queue = append(queue, e.To)
		}
	}
	return out
}
