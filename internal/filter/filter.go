// Package filter derives the visible notification list and the selector
// options from the local collection. All functions are pure and never
// reorder their input.
package filter

import (
	"slices"

	"github.com/nhle/notification-center/internal/model"
)

// View returns the items that pass every active filter, in input order.
// Filters apply unread-only first, then type, then severity.
func View(items []model.Notification, state model.FilterState) []model.Notification {
	out := make([]model.Notification, 0, len(items))
	for _, n := range items {
		if state.UnreadOnly && n.Read {
			continue
		}
		if state.TypeActive() && n.Type != state.Type {
			continue
		}
		if state.SeverityActive() && n.Severity != state.Severity {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Types returns the distinct notification types present in items, sorted.
func Types(items []model.Notification) []string {
	seen := make(map[string]struct{}, len(items))
	var types []string
	for _, n := range items {
		if _, ok := seen[n.Type]; ok {
			continue
		}
		seen[n.Type] = struct{}{}
		types = append(types, n.Type)
	}
	slices.Sort(types)
	return types
}

// Severities returns the distinct severities present in items, sorted.
func Severities(items []model.Notification) []model.Severity {
	seen := make(map[model.Severity]struct{}, len(items))
	var sevs []model.Severity
	for _, n := range items {
		if _, ok := seen[n.Severity]; ok {
			continue
		}
		seen[n.Severity] = struct{}{}
		sevs = append(sevs, n.Severity)
	}
	slices.Sort(sevs)
	return sevs
}

// UnreadCount returns the number of unread items.
func UnreadCount(items []model.Notification) int {
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Cache memoizes View for one collection version and filter state.
// Callers bump the version whenever the collection changes.
type Cache struct {
	valid   bool
	version uint64
	state   model.FilterState
	view    []model.Notification
}

// View returns the filtered view, recomputing it only when version or
// state differ from the cached key.
func (c *Cache) View(version uint64, items []model.Notification, state model.FilterState) []model.Notification {
	if c.valid && c.version == version && c.state == state {
		return c.view
	}
	c.view = View(items, state)
	c.version = version
	c.state = state
	c.valid = true
	return c.view
}

// Invalidate drops the cached view.
func (c *Cache) Invalidate() {
	c.valid = false
	c.view = nil
}
