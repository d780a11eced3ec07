package domain

// Command describes one mention command the bot understands.
type Command struct {
	Token       string
	AdminOnly   bool
	Description string
	Usage       string
}
