package swarm

import (
	"fmt"
	"sort"
)

// ContextView is the read-only view of the context store handed to tools,
// condition evaluators, and selectors. Writes flow only through a tool's
// structured ToolReply merge or a pre-turn hook.
type ContextView interface {
	// Get returns the value stored under key.
	Get(key string) (any, bool)
	// GetString returns the value under key rendered as a string, or "".
	GetString(key string) string
	// Keys returns all keys in sorted order.
	Keys() []string
	// Len returns the number of stored keys.
	Len() int
	// Snapshot returns a shallow copy of the underlying mapping.
	Snapshot() map[string]any
}

// ContextVars is the shared mutable key/value state threaded through a run.
// A single instance is shared across ordinary handoffs; nested runs receive
// a Clone unless their flow explicitly opts into sharing. The single-active-
// actor invariant makes the store safe without locking.
type ContextVars struct {
	values map[string]any
}

// NewContextVars creates a context store seeded from the given mapping.
// The seed is copied, never aliased.
func NewContextVars(seed map[string]any) *ContextVars {
	cv := &ContextVars{values: make(map[string]any, len(seed))}
	for k, v := range seed {
		cv.values[k] = v
	}
	return cv
}

// Get returns the value stored under key.
func (cv *ContextVars) Get(key string) (any, bool) {
	v, ok := cv.values[key]
	return v, ok
}

// GetString returns the value under key rendered as a string, or "" when the
// key is absent.
func (cv *ContextVars) GetString(key string) string {
	v, ok := cv.values[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Set stores value under key, replacing any prior value.
func (cv *ContextVars) Set(key string, value any) {
	cv.values[key] = value
}

// Delete removes key from the store.
func (cv *ContextVars) Delete(key string) {
	delete(cv.values, key)
}

// Merge applies updates with overwrite-by-key semantics: present keys
// replace, absent keys stay untouched.
func (cv *ContextVars) Merge(updates map[string]any) {
	for k, v := range updates {
		cv.values[k] = v
	}
}

// Keys returns all keys in sorted order.
func (cv *ContextVars) Keys() []string {
	keys := make([]string, 0, len(cv.values))
	for k := range cv.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (cv *ContextVars) Len() int {
	return len(cv.values)
}

// Snapshot returns a shallow copy of the underlying mapping.
func (cv *ContextVars) Snapshot() map[string]any {
	out := make(map[string]any, len(cv.values))
	for k, v := range cv.values {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy of the store. Used when a nested run is
// configured for snapshot isolation.
func (cv *ContextVars) Clone() *ContextVars {
	return NewContextVars(cv.values)
}

var _ ContextView = (*ContextVars)(nil)
