// Package history keeps the record of past checks, most recent first,
// de-duplicated by normalized value.
package history

import (
	"container/list"
	"sync"

	"github.com/emmi-lili/tx-whisperer/internal/domain/model"
)

const defaultCapacity = 500

// MRU is a bounded most-recently-used list of check records keyed by
// normalized value. Recording a value already present moves it to the
// front and merges the counts instead of inserting a duplicate.
type MRU struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
}

// NewMRU creates an MRU bounded to capacity records.
func NewMRU(capacity int) *MRU {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MRU{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Record inserts rec at the front. A record with the same value is merged:
// the check count accumulates, the original ID and first-checked time are
// kept, and everything else takes the incoming record's state.
func (m *MRU) Record(rec model.CheckRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.items[rec.Value]; ok {
		m.order.MoveToFront(elem)
		existing := elem.Value.(*model.CheckRecord)
		existing.CheckCount += rec.CheckCount
		existing.LastCheckedAt = rec.LastCheckedAt
		existing.Status = rec.Status
		existing.MatchCount = rec.MatchCount
		existing.RawInput = rec.RawInput
		existing.Chain = rec.Chain
		existing.Kind = rec.Kind
		return
	}

	if m.order.Len() >= m.capacity {
		m.evictOldest()
	}

	stored := rec
	elem := m.order.PushFront(&stored)
	m.items[rec.Value] = elem
}

// Get returns the record for a normalized value, if one is held. Looking a
// record up does not count as a check and leaves the recency order alone.
func (m *MRU) Get(value string) (model.CheckRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elem, ok := m.items[value]
	if !ok {
		return model.CheckRecord{}, false
	}
	return *elem.Value.(*model.CheckRecord), true
}

// Recent returns up to limit records, most recent first. A non-positive
// limit returns everything.
func (m *MRU) Recent(limit int) []model.CheckRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > m.order.Len() {
		limit = m.order.Len()
	}
	out := make([]model.CheckRecord, 0, limit)
	for elem := m.order.Front(); elem != nil && len(out) < limit; elem = elem.Next() {
		out = append(out, *elem.Value.(*model.CheckRecord))
	}
	return out
}

// Len returns the number of distinct values held.
func (m *MRU) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.order.Len()
}

func (m *MRU) evictOldest() {
	elem := m.order.Back()
	if elem == nil {
		return
	}
	m.order.Remove(elem)
	rec := elem.Value.(*model.CheckRecord)
	delete(m.items, rec.Value)
}
