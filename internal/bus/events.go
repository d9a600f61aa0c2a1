// Package bus provides the event distribution system for wikidex. Storage
// and agent operations publish events here; subscribers such as the
// WebSocket observer forward them to external clients.
package bus

import (
	"fmt"
	"sync/atomic"
	"time"
)

// EventType represents the type of event flowing through the bus.
type EventType string

// Event types published by the document pipeline.
const (
	// Document lifecycle events
	EventDocumentStored  EventType = "document_stored"
	EventDocumentUpdated EventType = "document_updated"
	EventDocumentSkipped EventType = "document_skipped"
	EventDocumentDeleted EventType = "document_deleted"

	// Wikipedia fetch events
	EventArticleFetched EventType = "article_fetched"
	EventFetchFailed    EventType = "fetch_failed"

	// Agent dispatch events
	EventQueryServed EventType = "query_served"
)

// Event represents a single occurrence in the document pipeline.
type Event struct {
	// Core identification
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`

	// Document context
	Query      string `json:"query,omitempty"`
	DocumentID string `json:"document_id,omitempty"`

	// Agent context
	Operation string `json:"operation,omitempty"`

	// Performance metrics
	DurationMs int64 `json:"duration_ms,omitempty"`

	// Free-form detail and error information
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// eventIDCounter for generating unique event IDs. Incremented atomically;
// events are published from concurrent server requests.
var eventIDCounter uint64

// generateEventID creates a unique event identifier.
func generateEventID() string {
	n := atomic.AddUint64(&eventIDCounter, 1)
	return fmt.Sprintf("evt_%d_%d", time.Now().UnixNano(), n)
}

// NewEvent creates a new event with the current timestamp and generated ID.
func NewEvent(eventType EventType) Event {
	return Event{
		ID:        generateEventID(),
		Timestamp: time.Now().UTC(),
		Type:      eventType,
	}
}
