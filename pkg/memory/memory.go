// Package memory implements the revisit-avoidance memory: a small persisted
// mapping from (app, state fingerprint) to prior-visit metadata, used to
// bias exploration away from states already fully explored in earlier runs.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
	"github.com/devicelab-dev/uiexplorer/pkg/logger"
)

// Version is the on-disk schema version.
const Version = "1"

// Record holds prior-visit metadata for one state.
type Record struct {
	VisitCount    int       `json:"visitCount"`
	FullyExpanded bool      `json:"fullyExpanded"`
	LastSeen      time.Time `json:"lastSeen"`
}

// fileDoc is the on-disk layout. One file holds the memory for any number
// of apps, keyed by package identifier.
type fileDoc struct {
	Version string                        `json:"version"`
	Apps    map[string]map[string]*Record `json:"apps"`
}

// Memory is the loaded revisit memory for one app. It is owned exclusively
// by the exploration controller for the duration of a run and flushed with
// Persist on normal termination only.
type Memory struct {
	path          string
	app           string
	avoidRevisits bool

	doc     fileDoc
	records map[string]*Record // view into doc.Apps[app]
}

// Load reads the memory file for the given app. It fails soft: a missing or
// corrupt file yields an empty memory and never aborts the run; corruption
// is logged and the file is overwritten on the next Persist.
// An empty path disables persistence entirely (in-memory only).
func Load(path, app string, avoidRevisits bool) *Memory {
	m := &Memory{
		path:          path,
		app:           app,
		avoidRevisits: avoidRevisits,
		doc:           fileDoc{Version: Version, Apps: map[string]map[string]*Record{}},
	}

	if path != "" {
		if err := m.read(); err != nil {
			logger.Warn("revisit memory %s: %v (starting empty)", path, err)
		}
	}

	if m.doc.Apps[app] == nil {
		m.doc.Apps[app] = map[string]*Record{}
	}
	m.records = m.doc.Apps[app]
	return m
}

func (m *Memory) read() error {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", core.ErrMemoryCorrupt, err)
	}
	if doc.Apps == nil {
		doc.Apps = map[string]map[string]*Record{}
	}
	doc.Version = Version
	m.doc = doc
	return nil
}

// RecordVisit increments the visit count for a state and stamps last-seen.
func (m *Memory) RecordVisit(fingerprint string) {
	rec := m.records[fingerprint]
	if rec == nil {
		rec = &Record{}
		m.records[fingerprint] = rec
	}
	rec.VisitCount++
	rec.LastSeen = time.Now().UTC()
}

// MarkFullyExpanded flags a state as having had every discovered action
// tried at least once.
func (m *Memory) MarkFullyExpanded(fingerprint string) {
	rec := m.records[fingerprint]
	if rec == nil {
		rec = &Record{LastSeen: time.Now().UTC()}
		m.records[fingerprint] = rec
	}
	rec.FullyExpanded = true
}

// ShouldDeprioritize reports whether exploration should treat the state as
// already exhausted. Always false when revisit avoidance is disabled.
func (m *Memory) ShouldDeprioritize(fingerprint string) bool {
	if !m.avoidRevisits {
		return false
	}
	rec := m.records[fingerprint]
	return rec != nil && rec.FullyExpanded
}

// Record returns the stored record for a fingerprint, or nil.
func (m *Memory) Record(fingerprint string) *Record {
	return m.records[fingerprint]
}

// Len returns the number of remembered states for this app.
func (m *Memory) Len() int {
	return len(m.records)
}

// Persist writes the memory atomically: the document is written to a
// temporary file in the target directory and renamed over the destination,
// so a crash mid-write can never leave a half-written file. Callers must
// not invoke Persist on abnormal termination.
func (m *Memory) Persist() error {
	if m.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(&m.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal revisit memory: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".memory-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp memory file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp memory file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp memory file: %w", err)
	}

	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}
