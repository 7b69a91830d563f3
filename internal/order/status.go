// AngelaMos | 2026
// status.go

package order

import (
	"strings"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var synonyms = map[string]Status{
	"paid":       StatusConfirmed,
	"processing": StatusPreparing,
	"shipped":    StatusReady,
}

// next is the single forward step out of each non-terminal status.
var next = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusDelivered,
}

// ParseStatus accepts canonical names and their synonyms.
func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if st, ok := synonyms[s]; ok {
		return st, true
	}
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) CanTransition(to Status) bool {
	if to == StatusCancelled {
		return s == StatusPending || s == StatusConfirmed
	}
	n, ok := next[s]
	return ok && n == to
}
