package domain

// Account identifies the fediverse account behind an inbound mention.
// Acct is the webfinger-style handle (user@instance) and is the equality
// key for admin matching.
type Account struct {
	Acct string
}
