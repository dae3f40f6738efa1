// Package report writes the run artifacts: report.json with the run
// summary and graph.json with the collected state graph. Both are written
// atomically so a watcher never sees a torn file.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/uiexplorer/pkg/explorer"
	"github.com/devicelab-dev/uiexplorer/pkg/graph"
)

// Version is the report schema version.
const Version = "1.0.0"

// DeviceInfo identifies the device the run executed on.
type DeviceInfo struct {
	Serial     string `json:"serial,omitempty"`
	Model      string `json:"model,omitempty"`
	SDK        string `json:"sdk,omitempty"`
	IsEmulator bool   `json:"isEmulator,omitempty"`
}

// Report is the top-level report.json document.
type Report struct {
	Version   string     `json:"version"`
	App       string     `json:"app"`
	Policy    string     `json:"policy"`
	Device    DeviceInfo `json:"device"`
	StartTime time.Time  `json:"startTime"`

	Status        explorer.Status          `json:"status"`
	Reason        string                   `json:"reason,omitempty"`
	Partial       bool                     `json:"partial"`
	DurationMs    int64                    `json:"durationMs"`
	Events        int                      `json:"events"`
	UniqueScreens int                      `json:"uniqueScreens"`
	Sections      []explorer.SectionResult `json:"sections,omitempty"`
	History       []explorer.StepRecord    `json:"history,omitempty"`
}

// GraphNode is one state in graph.json.
type GraphNode struct {
	Fingerprint   string `json:"fingerprint"`
	Seq           int    `json:"seq"`
	Activity      string `json:"activity,omitempty"`
	Package       string `json:"package,omitempty"`
	Screenshot    string `json:"screenshot,omitempty"`
	Actions       int    `json:"actions"`
	ActionsTried  int    `json:"actionsTried"`
	FullyExplored bool   `json:"fullyExplored"`
}

// GraphEdge is one transition in graph.json.
type GraphEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Action string `json:"action"`
}

// GraphDoc is the graph.json document.
type GraphDoc struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Build assembles the report from a finished run.
func Build(app, policy string, dev DeviceInfo, res *explorer.Result) *Report {
	return &Report{
		Version:       Version,
		App:           app,
		Policy:        policy,
		Device:        dev,
		StartTime:     res.StartedAt,
		Status:        res.Status,
		Reason:        res.Reason,
		Partial:       res.Partial,
		DurationMs:    res.Duration.Milliseconds(),
		Events:        res.Events,
		UniqueScreens: res.UniqueScreens,
		Sections:      res.Sections,
		History:       res.History,
	}
}

// BuildGraph flattens the state graph into its JSON form.
func BuildGraph(g *graph.StateGraph) *GraphDoc {
	doc := &GraphDoc{}
	for _, fp := range g.Fingerprints() {
		node := g.Node(fp)
		tried := 0
		for _, a := range node.Actions {
			if a.Tried {
				tried++
			}
		}
		doc.Nodes = append(doc.Nodes, GraphNode{
			Fingerprint:   fp,
			Seq:           node.Seq,
			Activity:      node.State.Activity,
			Package:       node.State.Package,
			Screenshot:    node.State.ScreenshotRef,
			Actions:       len(node.Actions),
			ActionsTried:  tried,
			FullyExplored: g.FullyExplored(fp),
		})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, GraphEdge{
			From:   e.From,
			To:     e.To,
			Action: e.Action.Describe(),
		})
	}
	return doc
}

// Write persists report.json and graph.json under outputDir.
func Write(outputDir string, rep *Report, g *graph.StateGraph) error {
	if err := ensureDir(outputDir); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := atomicWriteJSON(filepath.Join(outputDir, "report.json"), rep); err != nil {
		return fmt.Errorf("write report.json: %w", err)
	}
	if err := atomicWriteJSON(filepath.Join(outputDir, "graph.json"), BuildGraph(g)); err != nil {
		return fmt.Errorf("write graph.json: %w", err)
	}
	return nil
}

// atomicWriteJSON writes JSON via a temp file and rename, so readers never
// observe a partially written document.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
