package data

import (
	"context"
	"fmt"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/repo"
	"github.com/lmorchard/fediring-manager/internal/infra/fediverse"
)

// StatusPoster is the subset of the fediverse client the status repository
// needs.
type StatusPoster interface {
	PostStatus(ctx context.Context, status fediverse.Status) error
}

// statusRepo implements the Status repository on the fediverse client.
type statusRepo struct {
	client StatusPoster
}

// NewStatusRepo creates a new Status repository
func NewStatusRepo(client StatusPoster) repo.StatusRepo {
	return &statusRepo{client: client}
}

// PostReply posts text into the mention's thread and visibility
func (r *statusRepo) PostReply(ctx context.Context, text string, reply domain.ReplyContext) error {
	visibility := reply.Visibility
	if visibility == "" {
		visibility = "unlisted"
	}
	err := r.client.PostStatus(ctx, fediverse.Status{
		Text:       text,
		Visibility: visibility,
		InReplyTo:  reply.StatusID,
	})
	if err != nil {
		return fmt.Errorf("failed to post reply: %w", err)
	}
	return nil
}

// PostBroadcast posts text as a new public status
func (r *statusRepo) PostBroadcast(ctx context.Context, text string) error {
	err := r.client.PostStatus(ctx, fediverse.Status{
		Text:       text,
		Visibility: "public",
	})
	if err != nil {
		return fmt.Errorf("failed to post broadcast: %w", err)
	}
	return nil
}
