// Package netmon tracks connectivity. The engine reads IsOnline at the
// start of every mutation to choose direct persist vs enqueue, and drains
// the write queue on the offline-to-online edge.
package netmon

import "sync"

type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   map[int]func(online bool)
	next   int
}

func New(online bool) *Monitor {
	return &Monitor{online: online, subs: make(map[int]func(bool))}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records the new state and notifies subscribers on a transition.
// Notifications run synchronously; subscribers doing real work must hand it
// off themselves.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// Notify subscribes fn to transitions and returns a cancel func.
func (m *Monitor) Notify(fn func(online bool)) func() {
	m.mu.Lock()
	m.next++
	id := m.next
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
