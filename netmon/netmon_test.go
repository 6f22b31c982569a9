package netmon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionsNotifySubscribers(t *testing.T) {
	m := New(false)
	assert.False(t, m.IsOnline())

	var got []bool
	cancel := m.Notify(func(online bool) { got = append(got, online) })

	m.Set(true)
	m.Set(true) // no transition, no notification
	m.Set(false)

	assert.True(t, !m.IsOnline())
	assert.Equal(t, []bool{true, false}, got)

	cancel()
	m.Set(true)
	assert.Equal(t, []bool{true, false}, got)
}
