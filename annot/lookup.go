// Package annot maps stable gene identifiers to human-readable symbols.
package annot

// Lookup resolves gene identifiers to candidate display names. The returned
// map holds candidates in the lookup's own order; callers that need a single
// name take the first. An identifier with no mapping is simply absent from
// the map. A non-nil error means the lookup as a whole was unreachable;
// callers are expected to degrade to identifiers rather than abort.
type Lookup interface {
	Names(ids []string) (map[string][]string, error)
}
