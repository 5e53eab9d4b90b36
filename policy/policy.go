// Package policy holds the object-level authorization rules.
package policy

import "context"

// Action describes the kind of operation a caller wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ReadOnly reports whether the action never mutates the resource.
func (a Action) ReadOnly() bool {
	return a == ActionView || a == ActionList
}

// Authored is implemented by resources that belong to a profile.
type Authored interface {
	GetAuthorID() uint
}

// Policy decides whether a profile may perform action on resource.
type Policy interface {
	Can(ctx context.Context, profileID uint, action Action, resource any) bool
}

// AuthorOrReadOnly lets any authenticated profile read and only the author write.
type AuthorOrReadOnly struct{}

func NewAuthorOrReadOnly() *AuthorOrReadOnly {
	return &AuthorOrReadOnly{}
}

// Can allows reads and resource-less creates. Writes need an Authored resource
// whose author is profileID; anything else is denied.
func (p *AuthorOrReadOnly) Can(_ context.Context, profileID uint, action Action, resource any) bool {
	if profileID == 0 {
		return false
	}
	if action.ReadOnly() {
		return true
	}
	if resource == nil {
		return action == ActionCreate
	}
	authored, ok := resource.(Authored)
	if !ok {
		return false
	}
	return authored.GetAuthorID() == profileID
}
