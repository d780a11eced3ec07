package usecase

import (
	"errors"
	"fmt"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
)

// ErrPermissionDenied indicates a non-admin account attempted an admin
// command.
var ErrPermissionDenied = errors.New("permission denied")

// PermissionGate decides whether an account may use admin commands. It is a
// pure predicate over the configured allowlist and safe for concurrent use.
type PermissionGate struct {
	adminAccounts map[string]bool
}

// NewPermissionGate creates a permission gate from the admin allowlist. A
// nil or empty allowlist means nobody is an admin.
func NewPermissionGate(adminAccounts []string) *PermissionGate {
	admins := make(map[string]bool, len(adminAccounts))
	for _, acct := range adminAccounts {
		admins[acct] = true
	}
	return &PermissionGate{adminAccounts: admins}
}

// IsAdmin reports whether the account is on the admin allowlist.
func (g *PermissionGate) IsAdmin(account domain.Account) bool {
	return g.adminAccounts[account.Acct]
}

// RequireAdmin fails with ErrPermissionDenied when the account is not an
// admin.
func (g *PermissionGate) RequireAdmin(account domain.Account) error {
	if !g.IsAdmin(account) {
		return fmt.Errorf("%s is not an admin account: %w", account.Acct, ErrPermissionDenied)
	}
	return nil
}
