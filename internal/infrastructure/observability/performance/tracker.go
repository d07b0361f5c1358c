// Package performance provides marker-based performance tracking for OwlCart
// request handling with per-session correlation.
package performance

import (
	"fmt"
	"sync"
	"time"
)

// Marker represents a single performance measurement for an operation
type Marker struct {
	Operation string         `json:"operation"` // e.g. "cart:add_item", "pricing:reconcile"
	SessionID string         `json:"sessionId"` // Session the operation ran for
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Completed bool           `json:"completed"`
}

// Complete marks the operation as finished and freezes its duration.
func (m *Marker) Complete() {
	if m.Completed {
		return // Prevent double completion
	}
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.Completed = true
}

// SetSuccess marks the operation as successful or failed
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// SetError sets an error message and marks the operation as failed
func (m *Marker) SetError(err error) {
	if err != nil {
		m.Error = err.Error()
		m.Success = false
	}
}

// AddMetadata adds key-value metadata to the marker
func (m *Marker) AddMetadata(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// Tracker retains recent markers and aggregates simple operation stats.
type Tracker struct {
	markers    map[string]*Marker
	maxMarkers int
	mu         sync.RWMutex
	started    time.Time
}

// NewTracker creates a tracker retaining at most maxMarkers markers.
func NewTracker(maxMarkers int) *Tracker {
	if maxMarkers <= 0 {
		maxMarkers = 10000
	}
	return &Tracker{
		markers:    make(map[string]*Marker),
		maxMarkers: maxMarkers,
		started:    time.Now().UTC(),
	}
}

// StartOperation creates and registers a new performance marker.
func (t *Tracker) StartOperation(operation, sessionID string) *Marker {
	marker := &Marker{
		Operation: operation,
		SessionID: sessionID,
		StartTime: time.Now(),
		Success:   true, // Assume success until proven otherwise
	}

	markerID := fmt.Sprintf("%s_%s_%d", sessionID, operation, time.Now().UnixNano())

	t.mu.Lock()
	if len(t.markers) >= t.maxMarkers {
		t.evictOldestLocked()
	}
	t.markers[markerID] = marker
	t.mu.Unlock()

	return marker
}

// Summary reports marker counts per operation for the ops surface.
func (t *Tracker) Summary() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	perOperation := make(map[string]int)
	failures := 0
	for _, marker := range t.markers {
		perOperation[marker.Operation]++
		if marker.Completed && !marker.Success {
			failures++
		}
	}

	return map[string]any{
		"trackedMarkers": len(t.markers),
		"perOperation":   perOperation,
		"failures":       failures,
		"since":          t.started,
	}
}

// evictOldestLocked drops the oldest marker. Caller holds t.mu.
func (t *Tracker) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, marker := range t.markers {
		if oldestID == "" || marker.StartTime.Before(oldest) {
			oldestID = id
			oldest = marker.StartTime
		}
	}
	if oldestID != "" {
		delete(t.markers, oldestID)
	}
}
