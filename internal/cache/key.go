package cache

import "strings"

// Key identifies a cached value by namespace (usually the provider), entity kind
// (repo, contributors, user, ...) and an entity identifier.
type Key struct {
	Namespace string
	Kind      string
	ID        string
}

// String serializes the key as namespace:kind:id.
func (k Key) String() string {
	return strings.Join([]string{k.Namespace, k.Kind, k.ID}, ":")
}
