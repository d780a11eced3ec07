package domain

// ReplyContext carries what is needed to answer in the originating thread.
// The command layer never inspects it beyond passing it through to the
// status repository.
type ReplyContext struct {
	StatusID   string
	Visibility string
}

// Mention represents an inbound mention event.
type Mention struct {
	Account Account
	Text    string
	Reply   ReplyContext
}
