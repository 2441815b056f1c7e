package workspace

import (
	"encoding/json"
	"fmt"
	"strconv"

	"mockingbird/internal/domain"
)

// Storage keys, one per top-level field of the design.
const (
	KeyPages       = "wireframe-pages"
	KeyActivePage  = "wireframe-active-page"
	KeyPageNodes   = "wireframe-page-nodes"
	KeyConnections = "wireframe-connections"
	KeyRows        = "wireframe-rows"
	KeyCols        = "wireframe-cols"
	KeyDevice      = "wireframe-device"
	KeyViewMode    = "wireframe-view-mode"
)

// Keys lists every storage key in a stable order.
func Keys() []string {
	return []string{KeyPages, KeyActivePage, KeyPageNodes, KeyConnections, KeyRows, KeyCols, KeyDevice, KeyViewMode}
}

// Encode flattens the design into storage entries. Structured fields are
// JSON; scalars are stored as plain strings.
func Encode(s domain.State) (map[string]string, error) {
	out := make(map[string]string, 8)
	for key, v := range map[string]any{
		KeyPages:       s.Pages,
		KeyPageNodes:   s.PageNodes,
		KeyConnections: s.Connections,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = string(b)
	}
	out[KeyActivePage] = s.ActivePageID
	out[KeyRows] = strconv.Itoa(s.Grid.Rows)
	out[KeyCols] = strconv.Itoa(s.Grid.Cols)
	out[KeyDevice] = string(s.Device)
	out[KeyViewMode] = string(s.View)
	return out, nil
}

// DecodeIssue records a key that was present but unreadable.
type DecodeIssue struct {
	Key string
	Err error
}

// Decode rebuilds a design from storage entries. Each key is read on its
// own: a missing or unreadable key leaves that field at its zero value,
// which Normalize then replaces with the default. Issues are returned for
// logging; they never fail the load.
func Decode(entries map[string]string) (domain.State, []DecodeIssue) {
	var s domain.State
	var issues []DecodeIssue

	unmarshal := func(key string, dst any) bool {
		raw, ok := entries[key]
		if !ok || raw == "" {
			return false
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			issues = append(issues, DecodeIssue{Key: key, Err: err})
			return false
		}
		return true
	}
	atoi := func(key string) int {
		raw, ok := entries[key]
		if !ok || raw == "" {
			return 0
		}
		n, err := strconv.Atoi(scalar(raw))
		if err != nil {
			issues = append(issues, DecodeIssue{Key: key, Err: err})
			return 0
		}
		return n
	}

	var pages []domain.Page
	if unmarshal(KeyPages, &pages) {
		s.Pages = pages
	}
	var nodes []domain.PageNode
	if unmarshal(KeyPageNodes, &nodes) {
		s.PageNodes = nodes
	}
	var conns []domain.Connection
	if unmarshal(KeyConnections, &conns) {
		s.Connections = conns
	}

	s.ActivePageID = scalar(entries[KeyActivePage])
	s.Grid.Rows = atoi(KeyRows)
	s.Grid.Cols = atoi(KeyCols)
	s.Device = domain.DeviceMode(scalar(entries[KeyDevice]))
	s.View = domain.ViewMode(scalar(entries[KeyViewMode]))
	return s, issues
}

// scalar accepts both plain and JSON-quoted strings.
func scalar(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' {
		var v string
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}

// Snapshot serialises the whole design as a single JSON document, used for
// undo history entries.
func Snapshot(s domain.State) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(b), nil
}

// Restore parses a snapshot produced by Snapshot.
func Restore(snapshot string) (domain.State, error) {
	var s domain.State
	if err := json.Unmarshal([]byte(snapshot), &s); err != nil {
		return domain.State{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}
