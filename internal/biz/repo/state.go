package repo

import (
	"context"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
)

// StateRepo persists bot state blobs keyed by a namespace name.
//
// Update is the single serialization point for read-modify-write access to a
// namespace: the implementation must hold its lock across load, mutate, and
// save so that the ledger, the selector, and the scheduler cannot interleave
// on the same blob.
type StateRepo interface {
	// Load returns the state stored under name, or a zero-value state when
	// none has been saved yet.
	Load(ctx context.Context, name string) (*domain.BotState, error)

	// Update loads the state under name, applies mutate, and saves the
	// result when mutate reports a change. Returning false skips the write.
	Update(ctx context.Context, name string, mutate func(state *domain.BotState) (bool, error)) error

	// Close releases the underlying store.
	Close() error
}
