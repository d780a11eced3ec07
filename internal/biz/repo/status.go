package repo

import (
	"context"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
)

// StatusRepo posts statuses to the fediverse.
type StatusRepo interface {
	// PostReply posts text into the thread and visibility of the
	// originating mention.
	PostReply(ctx context.Context, text string, reply domain.ReplyContext) error

	// PostBroadcast posts text as a new public status, unrelated to any
	// reply thread.
	PostBroadcast(ctx context.Context, text string) error
}
