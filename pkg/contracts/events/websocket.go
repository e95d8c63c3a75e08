// Package events contains the contract of messages pushed to WebSocket clients.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MessageTypeConnection       MessageType = "connection"
	MessageTypeAnalysisProgress MessageType = "analysis:progress"
	MessageTypeAnalysisComplete MessageType = "analysis:complete"
	MessageTypeAnalysisError    MessageType = "analysis:error"
)

// Message is the envelope of every WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// Connection is sent to a client once it is registered
type Connection struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

// AnalysisProgress reports one finished series of a running workbook analysis
type AnalysisProgress struct {
	AnalysisID string `json:"analysis_id"`
	Well       string `json:"well"`
	Component  string `json:"component"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
}

// AnalysisComplete is sent when a workbook analysis has finished
type AnalysisComplete struct {
	AnalysisID string `json:"analysis_id"`
	Source     string `json:"source"`
	Rows       int    `json:"rows"`
	Skipped    int    `json:"skipped"`
	DurationMS int64  `json:"duration_ms"`
}

// AnalysisError is sent when a workbook analysis fails
type AnalysisError struct {
	AnalysisID string `json:"analysis_id"`
	Source     string `json:"source"`
	Error      string `json:"error"`
}
