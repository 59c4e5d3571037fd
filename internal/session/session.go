// Package session holds the client-side notification state. A Session is
// not safe for concurrent use; the UI mutates it from its update loop only.
package session

import (
	"fmt"
	"time"

	"github.com/nhle/notification-center/internal/filter"
	"github.com/nhle/notification-center/internal/model"
	appsync "github.com/nhle/notification-center/internal/sync"
)

// Alerter is notified after every applied snapshot.
type Alerter interface {
	MaybeAlert(hasNew, soundEnabled bool) bool
}

// Session owns the local collection, the latest stats, the filter state,
// the error slot and the sound flag.
type Session struct {
	items      []model.Notification
	version    uint64
	stats      model.Stats
	hasStats   bool
	filter     model.FilterState
	errMsg     string
	lastUpdate time.Time
	sound      bool
	alert      Alerter
	cache      filter.Cache
}

// New creates an empty session. alert may be nil.
func New(alert Alerter, soundEnabled bool) *Session {
	return &Session{
		filter: model.DefaultFilter(),
		sound:  soundEnabled,
		alert:  alert,
		stats:  model.Stats{ByType: map[string]int{}},
	}
}

// ApplySnapshot reconciles a fetched snapshot into the collection, fires
// the alert trigger and reports whether new notifications arrived.
func (s *Session) ApplySnapshot(snapshot []model.Notification, at time.Time) bool {
	merged, hasNew := appsync.Reconcile(s.items, snapshot)
	s.items = merged
	s.version++
	s.lastUpdate = at

	if s.alert != nil {
		s.alert.MaybeAlert(hasNew, s.sound)
	}
	return hasNew
}

// ApplyStats replaces the stats.
func (s *Session) ApplyStats(stats model.Stats) {
	if stats.ByType == nil {
		stats.ByType = map[string]int{}
	}
	s.stats = stats
	s.hasStats = true
}

// Stats returns the latest stats and whether any have been received.
func (s *Session) Stats() (model.Stats, bool) {
	return s.stats, s.hasStats
}

// Items returns the full local collection.
func (s *Session) Items() []model.Notification {
	return s.items
}

// Version increments on every change to the collection.
func (s *Session) Version() uint64 {
	return s.version
}

// LastUpdate returns when the last snapshot was applied.
func (s *Session) LastUpdate() time.Time {
	return s.lastUpdate
}

// Find returns the notification with the given ID.
func (s *Session) Find(id string) (model.Notification, bool) {
	for _, n := range s.items {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// MarkReadLocal marks one notification as read before the server confirms.
// It reports whether the notification was found and changed.
func (s *Session) MarkReadLocal(id string) bool {
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if s.items[i].Read {
			return false
		}
		s.items = cloneItems(s.items)
		s.items[i].Read = true
		s.version++
		return true
	}
	return false
}

// MarkAllReadLocal marks every notification as read and returns how many
// changed.
func (s *Session) MarkAllReadLocal() int {
	changed := 0
	items := cloneItems(s.items)
	for i := range items {
		if !items[i].Read {
			items[i].Read = true
			changed++
		}
	}
	if changed > 0 {
		s.items = items
		s.version++
	}
	return changed
}

// cloneItems copies the collection so views handed out earlier keep their
// contents.
func cloneItems(items []model.Notification) []model.Notification {
	out := make([]model.Notification, len(items))
	copy(out, items)
	return out
}

// SetError stores a human-readable message for err, replacing any previous
// one. op names the failed operation, e.g. "fetching notifications".
func (s *Session) SetError(op string, err error) {
	if err == nil {
		return
	}
	s.errMsg = fmt.Sprintf("Error %s: %v", op, err)
}

// DismissError clears the error slot.
func (s *Session) DismissError() {
	s.errMsg = ""
}

// Err returns the current error message, or "".
func (s *Session) Err() string {
	return s.errMsg
}

// View returns the filtered collection.
func (s *Session) View() []model.Notification {
	return s.cache.View(s.version, s.items, s.filter)
}

// Types returns the type options computed over the unfiltered collection.
func (s *Session) Types() []string {
	return filter.Types(s.items)
}

// Severities returns the severity options computed over the unfiltered
// collection.
func (s *Session) Severities() []model.Severity {
	return filter.Severities(s.items)
}

// UnreadCount counts unread items in the unfiltered collection.
func (s *Session) UnreadCount() int {
	return filter.UnreadCount(s.items)
}

// Filter returns the current filter state.
func (s *Session) Filter() model.FilterState {
	return s.filter
}

// SetFilter replaces the filter state.
func (s *Session) SetFilter(f model.FilterState) {
	if f.Type == "" {
		f.Type = model.FilterAll
	}
	if f.Severity == "" {
		f.Severity = model.FilterAll
	}
	s.filter = f
}

// ClearFilters resets every filter.
func (s *Session) ClearFilters() {
	s.filter = model.DefaultFilter()
}

// ToggleUnreadOnly flips the unread-only filter and returns the new value.
func (s *Session) ToggleUnreadOnly() bool {
	s.filter.UnreadOnly = !s.filter.UnreadOnly
	return s.filter.UnreadOnly
}

// SoundEnabled reports whether arrival tones are on.
func (s *Session) SoundEnabled() bool {
	return s.sound
}

// ToggleSound flips the sound flag and returns the new value.
func (s *Session) ToggleSound() bool {
	s.sound = !s.sound
	return s.sound
}

// SetSoundEnabled sets the sound flag.
func (s *Session) SetSoundEnabled(enabled bool) {
	s.sound = enabled
}
