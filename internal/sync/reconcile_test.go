package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/notification-center/internal/model"
)

func n(id string, read bool) model.Notification {
	return model.Notification{ID: id, Read: read, Type: model.TypeTest, Severity: model.SeverityInfo}
}

func TestReconcileDetectsArrivals(t *testing.T) {
	t.Parallel()
	old := []model.Notification{n("1", false), n("2", false)}
	snapshot := []model.Notification{n("3", false), n("1", false), n("2", false)}

	merged, hasNew := Reconcile(old, snapshot)

	assert.True(t, hasNew)
	assert.Equal(t, snapshot, merged)
}

func TestReconcileColdStartIsSilent(t *testing.T) {
	t.Parallel()
	for _, old := range [][]model.Notification{nil, {}} {
		merged, hasNew := Reconcile(old, []model.Notification{n("1", false), n("2", true)})
		assert.False(t, hasNew)
		assert.Len(t, merged, 2)
	}
}

func TestReconcileSameSnapshotTwiceIsNotNew(t *testing.T) {
	t.Parallel()
	s := []model.Notification{n("1", false), n("2", true)}

	merged, _ := Reconcile(nil, s)
	_, hasNew := Reconcile(merged, s)

	assert.False(t, hasNew)
}

func TestReconcileAdoptsSnapshotFields(t *testing.T) {
	t.Parallel()
	old := []model.Notification{n("1", false), n("stale", false)}
	snapshot := []model.Notification{n("1", true)}

	merged, hasNew := Reconcile(old, snapshot)

	assert.False(t, hasNew, "removals and field changes are not arrivals")
	assert.Equal(t, []model.Notification{n("1", true)}, merged)
}

func TestReconcileEmptySnapshotClearsCollection(t *testing.T) {
	t.Parallel()
	merged, hasNew := Reconcile([]model.Notification{n("1", false)}, []model.Notification{})

	assert.False(t, hasNew)
	assert.Empty(t, merged)
}

func TestReconcileScenario(t *testing.T) {
	t.Parallel()
	old := []model.Notification{
		{ID: "1", Read: false, Type: model.TypeOrderCreated, Severity: model.SeverityInfo},
	}
	snapshot := []model.Notification{
		{ID: "1", Read: true, Type: model.TypeOrderCreated, Severity: model.SeverityInfo},
		{ID: "2", Read: false, Type: model.TypeLowStock, Severity: model.SeverityWarning},
	}

	merged, hasNew := Reconcile(old, snapshot)

	assert.True(t, hasNew)
	assert.Len(t, merged, 2)
	unread := 0
	for _, item := range merged {
		if !item.Read {
			unread++
		}
	}
	assert.Equal(t, 1, unread)
}

func TestNewItemsPreservesSnapshotOrder(t *testing.T) {
	t.Parallel()
	old := []model.Notification{n("b", false)}
	snapshot := []model.Notification{n("c", false), n("b", false), n("a", false)}

	got := NewItems(old, snapshot)

	assert.Equal(t, []model.Notification{n("c", false), n("a", false)}, got)
}
