package domain

import "time"

// BotState is the persisted bot state for one namespace: the random
// selection history (most recent first), the deferred request ledger, and
// the last-run bookkeeping for scheduled tasks.
type BotState struct {
	SelectionHistory []string             `json:"selectionHistory"`
	PendingRequests  DeferredRequestList  `json:"pendingRequests"`
	LastRuns         map[string]time.Time `json:"lastRuns,omitempty"`
}
