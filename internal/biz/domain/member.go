package domain

// MemberRow is one row of the ring membership CSV. Field 0 is the member
// address, the unique identifier within the ring.
type MemberRow []string

// Address returns the member address, or "" for an empty row.
func (r MemberRow) Address() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// MemberList is the ordered contents of the membership CSV. By collaborator
// convention the first row is a header row.
type MemberList []MemberRow

// Append adds one single-field row per address, preserving insertion order.
// Addresses already present are not deduplicated; the membership file allows
// repeats.
func (l MemberList) Append(addresses ...string) MemberList {
	out := l
	for _, addr := range addresses {
		out = append(out, MemberRow{addr})
	}
	return out
}

// RemoveAddresses filters out every row whose address matches one of the
// given addresses.
func (l MemberList) RemoveAddresses(addresses ...string) MemberList {
	drop := make(map[string]bool, len(addresses))
	for _, addr := range addresses {
		drop[addr] = true
	}

	out := make(MemberList, 0, len(l))
	for _, row := range l {
		if drop[row.Address()] {
			continue
		}
		out = append(out, row)
	}
	return out
}
