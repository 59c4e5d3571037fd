package sync

import "github.com/nhle/notification-center/internal/model"

// Reconcile adopts snapshot as the new local collection and reports whether
// it brought notifications whose IDs were absent from old.
//
// The snapshot is authoritative: items missing from it are dropped and
// changed fields (notably Read) are taken from it. Arrivals on a cold start
// (old is empty) do not count as new.
func Reconcile(old, snapshot []model.Notification) (merged []model.Notification, hasNew bool) {
	if len(old) == 0 {
		return snapshot, false
	}
	return snapshot, len(NewItems(old, snapshot)) > 0
}

// NewItems returns the items of snapshot whose ID does not appear in old,
// in snapshot order.
func NewItems(old, snapshot []model.Notification) []model.Notification {
	known := make(map[string]struct{}, len(old))
	for _, n := range old {
		known[n.ID] = struct{}{}
	}

	var arrived []model.Notification
	for _, n := range snapshot {
		if _, ok := known[n.ID]; !ok {
			arrived = append(arrived, n)
		}
	}
	return arrived
}
