package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/repo"
	"github.com/lmorchard/fediring-manager/internal/biz/usecase"
	"github.com/lmorchard/fediring-manager/internal/conf"
)

// Handlers implements the bot's mention commands over the permission gate,
// the pending request ledger, the membership selector, and the membership
// list.
type Handlers struct {
	replier
	gate         *usecase.PermissionGate
	ledger       *usecase.LedgerUsecase
	selector     *usecase.SelectorUsecase
	members      *usecase.MembersUsecase
	mentionCount int
}

// NewHandlers creates the command handler set.
func NewHandlers(
	gate *usecase.PermissionGate,
	ledger *usecase.LedgerUsecase,
	selector *usecase.SelectorUsecase,
	members *usecase.MembersUsecase,
	renderer *Renderer,
	statusRepo repo.StatusRepo,
	mentionCount int,
) *Handlers {
	return &Handlers{
		replier:      replier{renderer: renderer, statuses: statusRepo},
		gate:         gate,
		ledger:       ledger,
		selector:     selector,
		members:      members,
		mentionCount: mentionCount,
	}
}

// RegisterAll registers every command on the router. The order here is the
// matching tie-break order.
func (h *Handlers) RegisterAll(router *Router) {
	router.Register(domain.Command{
		Token:       "help",
		Description: "List supported commands",
		Usage:       "help",
	}, h.helpHandler(router))

	router.Register(domain.Command{
		Token:       "add",
		Description: "Add a new member (e.g. add me)",
		Usage:       "add me",
	}, h.commandAdd)

	router.Register(domain.Command{
		Token:       "remove",
		Description: "Remove an existing member (e.g. remove me)",
		Usage:       "remove me",
	}, h.commandRemove)

	router.Register(domain.Command{
		Token:       "random",
		Description: "Mention one random member",
		Usage:       "random",
	}, h.commandRandom)

	router.Register(domain.Command{
		Token:       "mention",
		AdminOnly:   true,
		Description: "Mention a random selection of members",
		Usage:       "mention",
	}, h.commandMention)

	router.Register(domain.Command{
		Token:       "pending",
		AdminOnly:   true,
		Description: "List pending requests",
		Usage:       "pending",
	}, h.commandPending)

	router.Register(domain.Command{
		Token:       "defer",
		AdminOnly:   true,
		Description: "Add a request to the pending list",
		Usage:       "defer add me",
	}, h.commandDefer)

	router.Register(domain.Command{
		Token:       "cancel",
		AdminOnly:   true,
		Description: "Remove a request from the pending list",
		Usage:       "cancel add me",
	}, h.commandCancel)

	router.Register(domain.Command{
		Token:       "flush",
		AdminOnly:   true,
		Description: "Clear out the list of pending requests",
		Usage:       "flush",
	}, h.commandFlush)
}

// membersFromParams resolves the shared "me" shorthand: a leading "me"
// substitutes the invoking account's own address.
func (h *Handlers) membersFromParams(params []string, account domain.Account) []string {
	if len(params) > 0 && params[0] == "me" {
		return append([]string{account.Acct}, params[1:]...)
	}
	return params
}

func (h *Handlers) commandAdd(ctx context.Context, req *CommandRequest) error {
	members := h.membersFromParams(req.Params, req.Account)
	request := strings.Join(append([]string{"add"}, members...), " ")
	vars := ReplyVars{
		Account: req.Account.Acct,
		Members: strings.Join(members, " "),
	}

	if !h.gate.IsAdmin(req.Account) {
		if _, err := h.ledger.Add(ctx, request, req.Account.Acct); err != nil {
			return err
		}
		return h.reply(ctx, req.Mention, conf.TemplateCommandAddDeferred, vars)
	}

	if err := h.members.Add(ctx, members); err != nil {
		return err
	}
	// Fulfilling an add clears any matching deferred request.
	if _, err := h.ledger.Cancel(ctx, request); err != nil {
		return err
	}
	return h.reply(ctx, req.Mention, conf.TemplateCommandAdd, vars)
}

func (h *Handlers) commandRemove(ctx context.Context, req *CommandRequest) error {
	members := h.membersFromParams(req.Params, req.Account)
	request := strings.Join(append([]string{"remove"}, members...), " ")
	vars := ReplyVars{
		Account: req.Account.Acct,
		Members: strings.Join(members, " "),
	}

	if !h.gate.IsAdmin(req.Account) {
		if _, err := h.ledger.Add(ctx, request, req.Account.Acct); err != nil {
			return err
		}
		return h.reply(ctx, req.Mention, conf.TemplateCommandRemoveDeferred, vars)
	}

	if err := h.members.Remove(ctx, members); err != nil {
		return err
	}
	if _, err := h.ledger.Cancel(ctx, request); err != nil {
		return err
	}
	return h.reply(ctx, req.Mention, conf.TemplateCommandRemove, vars)
}

func (h *Handlers) commandRandom(ctx context.Context, req *CommandRequest) error {
	selection, err := h.selector.SelectRandom(ctx, 1)
	if err != nil {
		return err
	}

	var member string
	if len(selection) > 0 {
		member = selection[0]
	}
	return h.reply(ctx, req.Mention, conf.TemplateCommandRandom, ReplyVars{
		Account: req.Account.Acct,
		Member:  member,
	})
}

func (h *Handlers) commandMention(ctx context.Context, req *CommandRequest) error {
	if err := h.gate.RequireAdmin(req.Account); err != nil {
		return err
	}
	return h.MentionMembers(ctx)
}

// MentionMembers selects a batch of random members and announces them in a
// public broadcast. Shared by the mention command, the interval scheduler,
// and the one-shot CLI action.
func (h *Handlers) MentionMembers(ctx context.Context) error {
	selection, err := h.selector.SelectRandom(ctx, h.mentionCount)
	if err != nil {
		return err
	}
	fmt.Printf("[Handlers] Mentioning members: %v\n", selection)
	return h.broadcast(ctx, conf.TemplateMentionMembers, ReplyVars{Selected: selection})
}

func (h *Handlers) helpHandler(router *Router) HandlerFunc {
	return func(ctx context.Context, req *CommandRequest) error {
		isAdmin := h.gate.IsAdmin(req.Account)

		var visible []domain.Command
		for _, cmd := range router.Commands() {
			if cmd.AdminOnly && !isAdmin {
				continue
			}
			visible = append(visible, cmd)
		}

		return h.reply(ctx, req.Mention, conf.TemplateCommandHelp, ReplyVars{
			Account:  req.Account.Acct,
			Commands: visible,
		})
	}
}

func (h *Handlers) commandPending(ctx context.Context, req *CommandRequest) error {
	if err := h.gate.RequireAdmin(req.Account); err != nil {
		return err
	}

	requests, err := h.ledger.List(ctx)
	if err != nil {
		return err
	}
	return h.reply(ctx, req.Mention, conf.TemplateCommandPending, ReplyVars{
		Account:  req.Account.Acct,
		Requests: requests,
	})
}

func (h *Handlers) commandDefer(ctx context.Context, req *CommandRequest) error {
	if err := h.gate.RequireAdmin(req.Account); err != nil {
		return err
	}

	request := strings.Join(req.Params, " ")
	entry, err := h.ledger.Add(ctx, request, req.Account.Acct)
	if err != nil {
		return err
	}
	return h.reply(ctx, req.Mention, conf.TemplateCommandDefer, ReplyVars{
		Account: req.Account.Acct,
		Request: entry.Request,
	})
}

func (h *Handlers) commandCancel(ctx context.Context, req *CommandRequest) error {
	if err := h.gate.RequireAdmin(req.Account); err != nil {
		return err
	}

	request := strings.Join(req.Params, " ")
	// A missing request still gets a normal confirmation.
	if _, err := h.ledger.Cancel(ctx, request); err != nil {
		return err
	}
	return h.reply(ctx, req.Mention, conf.TemplateCommandCancel, ReplyVars{
		Account: req.Account.Acct,
		Request: request,
	})
}

func (h *Handlers) commandFlush(ctx context.Context, req *CommandRequest) error {
	if err := h.gate.RequireAdmin(req.Account); err != nil {
		return err
	}

	if err := h.ledger.Flush(ctx); err != nil {
		return err
	}
	return h.reply(ctx, req.Mention, conf.TemplateCommandFlush, ReplyVars{
		Account: req.Account.Acct,
	})
}
