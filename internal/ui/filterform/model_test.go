package filterform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/notification-center/internal/model"
)

func TestStartSeedsBindingsFromCurrentFilter(t *testing.T) {
	m := New(80, 24)
	m.Start(model.FilterState{Type: model.TypeLowStock, UnreadOnly: true},
		[]string{model.TypeLowStock, model.TypeTest},
		[]model.Severity{model.SeverityInfo})

	got := m.result()
	assert.Equal(t, model.TypeLowStock, got.Type)
	assert.EqualValues(t, model.FilterAll, got.Severity)
	assert.True(t, got.UnreadOnly)
	assert.NotEmpty(t, m.View())
}

func TestOptionsStartWithAll(t *testing.T) {
	types := typeOptions([]string{model.TypeTest})
	assert.Len(t, types, 2)
	assert.Equal(t, model.FilterAll, types[0].Value)
	assert.Equal(t, model.TypeTest, types[1].Value)

	sevs := severityOptions(nil)
	assert.Len(t, sevs, 1)
	assert.Equal(t, model.FilterAll, sevs[0].Value)
}
