// Package directory provides a read-only client for the entity directory
// service: the system of record for users, groups and components, queried
// by reference or by kind.
package directory

import (
	"fmt"
	"strings"
)

// KindUser is the entity kind whose records carry a notification email.
const KindUser = "User"

// Profile is the optional user profile block of an entity spec.
type Profile struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// EntitySpec is the structured spec of a directory entity. Fields are
// optional; absent fields are represented as nil rather than errors.
type EntitySpec struct {
	Profile *Profile `json:"profile,omitempty"`
}

// Metadata identifies a directory entity within its namespace.
type Metadata struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

// Entity is a directory record with a kind and a structured spec.
type Entity struct {
	Kind     string     `json:"kind"`
	Metadata Metadata   `json:"metadata"`
	Spec     EntitySpec `json:"spec"`
}

// Email extracts the notification address of an entity. It is a total
// function: entities that are not Users, or that lack a profile email,
// contribute no address.
func (e *Entity) Email() (string, bool) {
	if e == nil || !strings.EqualFold(e.Kind, KindUser) {
		return "", false
	}
	if e.Spec.Profile == nil || e.Spec.Profile.Email == "" {
		return "", false
	}
	return e.Spec.Profile.Email, true
}

// Ref is a parsed entity reference of the form "kind:namespace/name".
type Ref struct {
	Kind      string
	Namespace string
	Name      string
}

// ParseRef parses an entity reference string. The namespace defaults to
// "default" when omitted ("user:mock" is "user:default/mock").
func ParseRef(ref string) (Ref, error) {
	kind, rest, ok := strings.Cut(ref, ":")
	if !ok || kind == "" || rest == "" {
		return Ref{}, fmt.Errorf("invalid entity reference %q: expected kind:namespace/name", ref)
	}
	namespace, name, ok := strings.Cut(rest, "/")
	if !ok {
		namespace, name = "default", rest
	}
	if namespace == "" || name == "" {
		return Ref{}, fmt.Errorf("invalid entity reference %q: empty namespace or name", ref)
	}
	return Ref{Kind: kind, Namespace: namespace, Name: name}, nil
}

// String renders the reference in canonical kind:namespace/name form.
func (r Ref) String() string {
	return fmt.Sprintf("%s:%s/%s", r.Kind, r.Namespace, r.Name)
}
