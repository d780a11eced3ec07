package domain

// DeferredRequest is a queued membership change awaiting admin approval.
// Requests are keyed by their text: the same request from two different
// accounts collapses to a single entry.
type DeferredRequest struct {
	Request string `json:"request"`
	From    string `json:"from"`
}

// DeferredRequestList holds deferred requests in insertion order with set
// semantics on the request text.
type DeferredRequestList []DeferredRequest

// Find returns the entry matching the request text.
func (l DeferredRequestList) Find(request string) (DeferredRequest, bool) {
	for _, r := range l {
		if r.Request == request {
			return r, true
		}
	}
	return DeferredRequest{}, false
}

// Add inserts the request unless an entry with the same text exists. The
// second return value reports whether the list changed.
func (l DeferredRequestList) Add(req DeferredRequest) (DeferredRequestList, bool) {
	if _, ok := l.Find(req.Request); ok {
		return l, false
	}
	return append(l, req), true
}

// Remove deletes the entry matching the request text, returning the removed
// entry when one was found.
func (l DeferredRequestList) Remove(request string) (DeferredRequestList, *DeferredRequest) {
	for i, r := range l {
		if r.Request == request {
			removed := r
			return append(l[:i:i], l[i+1:]...), &removed
		}
	}
	return l, nil
}
