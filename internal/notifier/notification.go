// Package notifier implements the core notification email pipeline:
// resolving an abstract recipient specification into concrete addresses
// via the directory, and dispatching one message per resolved recipient
// through the configured mail transport.
package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Recipient spec variants.
const (
	RecipientEntity    = "entity"
	RecipientEntities  = "entities"
	RecipientBroadcast = "broadcast"
)

// Payload is the human-readable content of a notification.
type Payload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// NotificationEvent is one dispatched notification instance. It is created
// by the bus and immutable within this package.
type NotificationEvent struct {
	Origin  string    `json:"origin"`
	ID      string    `json:"id"`
	User    string    `json:"user,omitempty"` // empty for broadcasts
	Created time.Time `json:"created"`
	Payload Payload   `json:"payload"`
}

// RecipientSpec describes whom to notify. Exactly one variant is active,
// selected by Type.
type RecipientSpec struct {
	Type       string   `json:"type"`
	EntityRef  string   `json:"entityRef,omitempty"`
	EntityRefs []string `json:"entityRefs,omitempty"`
}

// Validate checks that the spec's active variant carries its required fields.
func (s RecipientSpec) Validate() error {
	switch s.Type {
	case RecipientEntity:
		if s.EntityRef == "" {
			return fmt.Errorf("recipient spec %q requires entityRef", s.Type)
		}
	case RecipientEntities:
		if len(s.EntityRefs) == 0 {
			return fmt.Errorf("recipient spec %q requires entityRefs", s.Type)
		}
	case RecipientBroadcast:
	default:
		return fmt.Errorf("unknown recipient spec type %q", s.Type)
	}
	return nil
}

// Notification pairs an event with its recipient specification, as consumed
// from the bus.
type Notification struct {
	Event      NotificationEvent `json:"event"`
	Recipients RecipientSpec     `json:"recipients"`
}

// Recipients is a deduplicated set of email addresses. Addresses are folded
// to lower case on insertion, so resolution treats "A@x.io" and "a@x.io" as
// the same recipient.
type Recipients map[string]struct{}

// Add inserts an address into the set, folding case. Empty strings are ignored.
func (r Recipients) Add(addr string) {
	if addr == "" {
		return
	}
	r[strings.ToLower(addr)] = struct{}{}
}

// Addresses returns the set's members in sorted order.
func (r Recipients) Addresses() []string {
	out := make([]string, 0, len(r))
	for addr := range r {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
