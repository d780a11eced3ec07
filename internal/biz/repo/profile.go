package repo

import (
	"context"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
)

// ProfileRepo is the membership storage interface, backed by the ring's
// version-controlled CSV file.
type ProfileRepo interface {
	// FetchRows returns the current membership rows after refreshing the
	// local copy. The header row is included; callers skip it.
	FetchRows(ctx context.Context) (domain.MemberList, error)

	// PersistRows writes the full membership list back to storage and
	// publishes the change.
	PersistRows(ctx context.Context, rows domain.MemberList) error

	// Refresh updates the local copy from the remote without reading it.
	Refresh(ctx context.Context) error
}
