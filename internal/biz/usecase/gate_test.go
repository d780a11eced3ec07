package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
)

func TestPermissionGateIsAdmin(t *testing.T) {
	gate := NewPermissionGate([]string{"admin@a.example", "root@b.example"})

	assert.True(t, gate.IsAdmin(domain.Account{Acct: "admin@a.example"}))
	assert.False(t, gate.IsAdmin(domain.Account{Acct: "alice@a.example"}))
}

func TestPermissionGateEmptyAllowlist(t *testing.T) {
	gate := NewPermissionGate(nil)

	assert.False(t, gate.IsAdmin(domain.Account{Acct: "admin@a.example"}))
	assert.ErrorIs(t, gate.RequireAdmin(domain.Account{Acct: "admin@a.example"}), ErrPermissionDenied)
}

func TestPermissionGateRequireAdmin(t *testing.T) {
	gate := NewPermissionGate([]string{"admin@a.example"})

	assert.NoError(t, gate.RequireAdmin(domain.Account{Acct: "admin@a.example"}))

	err := gate.RequireAdmin(domain.Account{Acct: "mallory@evil.example"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Contains(t, err.Error(), "mallory@evil.example")
}
