package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/repo"
	"github.com/lmorchard/fediring-manager/internal/conf"
)

// HandlerFunc handles one parsed mention command.
type HandlerFunc func(ctx context.Context, req *CommandRequest) error

// CommandRequest carries a matched command invocation.
type CommandRequest struct {
	Command domain.Command
	Params  []string
	Account domain.Account
	Mention domain.Mention
}

type registration struct {
	def     domain.Command
	handler HandlerFunc
}

// Router tokenizes inbound mentions and dispatches to command handlers.
// Handler failures never escape: they are logged and answered with a
// generic error reply.
type Router struct {
	replier
	commands []registration
}

// NewRouter creates a new router.
func NewRouter(renderer *Renderer, statusRepo repo.StatusRepo) *Router {
	return &Router{
		replier: replier{renderer: renderer, statuses: statusRepo},
	}
}

// Register appends a command definition and its handler. Registration order
// is the tie-break order for matching.
func (r *Router) Register(def domain.Command, handler HandlerFunc) {
	r.commands = append(r.commands, registration{def: def, handler: handler})
}

// Commands returns the registered command definitions in registration order.
func (r *Router) Commands() []domain.Command {
	defs := make([]domain.Command, 0, len(r.commands))
	for _, reg := range r.commands {
		defs = append(defs, reg.def)
	}
	return defs
}

// Route parses the mention text and dispatches the first registered command
// whose token appears anywhere in it. Registration order wins over position
// in the text.
func (r *Router) Route(ctx context.Context, mention domain.Mention) {
	tokens := tokenize(mention.Text)

	for _, reg := range r.commands {
		idx := indexOf(tokens, reg.def.Token)
		if idx == -1 {
			continue
		}

		req := &CommandRequest{
			Command: reg.def,
			Params:  tokens[idx+1:],
			Account: mention.Account,
			Mention: mention,
		}

		fmt.Printf("[Router] Command %q from %s, params %v\n",
			reg.def.Token, mention.Account.Acct, req.Params)

		if err := reg.handler(ctx, req); err != nil {
			fmt.Printf("[Router] Command %q failed: %v\n", reg.def.Token, err)
			r.replyTemplate(ctx, mention, conf.TemplateError, ReplyVars{Account: mention.Account.Acct})
		}
		return
	}

	fmt.Printf("[Router] Unknown command from %s: %v\n", mention.Account.Acct, tokens)
	r.replyTemplate(ctx, mention, conf.TemplateUnknownCommand, ReplyVars{Account: mention.Account.Acct})
}

// tokenize strips markup from mention content and splits it into words,
// dropping @-handles so neither the bot's own handle nor other mentioned
// accounts are mistaken for commands or parameters.
func tokenize(content string) []string {
	normalized := strings.NewReplacer(
		"<br />", "\n",
		"<br/>", "\n",
		"<br>", "\n",
		"</p>", "\n",
	).Replace(content)

	text := normalized
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(normalized)); err == nil {
		text = doc.Text()
	}

	var tokens []string
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "@") {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func indexOf(tokens []string, token string) int {
	for i, t := range tokens {
		if t == token {
			return i
		}
	}
	return -1
}

// replier posts templated statuses, shared by the router and the handlers.
type replier struct {
	renderer *Renderer
	statuses repo.StatusRepo
}

// replyTemplate renders a template and posts it into the mention's thread.
// Failures are logged, not returned; an error reply that cannot be posted
// has nowhere else to go.
func (r *replier) replyTemplate(ctx context.Context, mention domain.Mention, name string, vars ReplyVars) {
	text, err := r.renderer.Render(name, vars)
	if err != nil {
		fmt.Printf("[Router] Render %s failed: %v\n", name, err)
		return
	}
	if err := r.statuses.PostReply(ctx, text, mention.Reply); err != nil {
		fmt.Printf("[Router] Reply %s failed: %v\n", name, err)
	}
}

// reply renders a template and posts it into the mention's thread,
// returning any failure to the caller.
func (r *replier) reply(ctx context.Context, mention domain.Mention, name string, vars ReplyVars) error {
	text, err := r.renderer.Render(name, vars)
	if err != nil {
		return err
	}
	return r.statuses.PostReply(ctx, text, mention.Reply)
}

// broadcast renders a template and posts it as a new public status.
func (r *replier) broadcast(ctx context.Context, name string, vars ReplyVars) error {
	text, err := r.renderer.Render(name, vars)
	if err != nil {
		return err
	}
	return r.statuses.PostBroadcast(ctx, text)
}
