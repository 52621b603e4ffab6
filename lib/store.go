package lib

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Storable is the constraint for the cold payload of a dual-array store.
type Storable interface {
	Reset()
	String() string
}

// SimpleStore is the store access a ConnHandle needs: resolve a logical
// slot to its record, or nil when the slot is stale or was never issued.
type SimpleStore interface {
	Get(slot uint64) *ConRecord
}

// RecordStore is a bounded, pre-allocated arena of connection records.
// Slots are logical, strictly increasing numbers; when all physical cells
// are in use the store wraps and starts overwriting the oldest cells in
// allocation order. Wrapping invalidates every slot issued before the wrap.
//
// A store belongs to exactly one pipeline core; nothing here is locked.
type RecordStore struct {
	records       []ConRecord
	recordCount   uint64
	overflowCount uint64
	wraps         uint64
}

// NewRecordStore pre-fills a store with capacity default records. The
// capacity must exceed the maximum number of simultaneously live
// connections, not the cumulative count; see GetNextSlot.
func NewRecordStore(capacity int) *RecordStore {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewRecordStore: invalid capacity %d", capacity))
	}
	return &RecordStore{
		records: make([]ConRecord, capacity),
	}
}

// GetNextSlot issues the next logical slot. When the capacity is exhausted
// the store wraps: all previously issued slots become stale and their cells
// are reused in allocation order. The wrap is logged, not an error; callers
// size the capacity so it cannot happen under expected load.
func (s *RecordStore) GetNextSlot() uint64 {
	if s.recordCount-s.overflowCount == uint64(len(s.records)) {
		s.overflowCount = s.recordCount
		s.wraps++
		log.Warnf("wrapping around record store after exceeding max size = %d", len(s.records))
	}
	slot := s.recordCount
	s.recordCount++
	return slot
}

// Get resolves a logical slot to its record. Slots issued before the most
// recent wrap, or never issued, resolve to nil.
func (s *RecordStore) Get(slot uint64) *ConRecord {
	if slot < s.overflowCount || slot >= s.recordCount {
		return nil
	}
	return &s.records[slot-s.overflowCount]
}

// Len is the number of currently valid records: slots issued since the
// last wrap.
func (s *RecordStore) Len() int {
	return int(s.recordCount - s.overflowCount)
}

func (s *RecordStore) Capacity() int { return len(s.records) }

// IssuedSlots is the total number of slots ever issued, wraps included.
func (s *RecordStore) IssuedSlots() uint64 { return s.recordCount }

// Wraps is the number of capacity wraparounds so far.
func (s *RecordStore) Wraps() uint64 { return s.wraps }

// At returns the i-th valid record in physical order, 0 <= i < Len().
func (s *RecordStore) At(i int) *ConRecord {
	return &s.records[:s.Len()][i]
}

// All walks the valid records in physical order until yield returns false.
func (s *RecordStore) All(yield func(*ConRecord) bool) {
	for i := 0; i < s.Len(); i++ {
		if !yield(&s.records[i]) {
			return
		}
	}
}

// Snapshot copies the valid records out, for reporting across cores.
func (s *RecordStore) Snapshot() []ConRecord {
	out := make([]ConRecord, s.Len())
	copy(out, s.records[:s.Len()])
	return out
}

// SortBy reorders the valid prefix in place, stable for equal keys. Only
// for reporting snapshots; it invalidates the slot-to-record mapping and
// must never run on a live hot path.
func (s *RecordStore) SortBy(less func(a, b *ConRecord) bool) {
	valid := s.records[:s.Len()]
	sort.SliceStable(valid, func(i, j int) bool {
		return less(&valid[i], &valid[j])
	})
}

// Store64 is the dual-array store variant: the hot ConRecord array and a
// parallel caller-defined cold array, allocated and wrapped in lock-step.
// One GetNextSlot call advances both.
type Store64[T Storable] struct {
	records       []ConRecord
	payload       []T
	recordCount   uint64
	overflowCount uint64
	wraps         uint64
}

// NewStore64 pre-fills both arrays; newT builds one default cold value per
// slot up front so the hot path never allocates.
func NewStore64[T Storable](capacity int, newT func() T) *Store64[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewStore64: invalid capacity %d", capacity))
	}
	payload := make([]T, capacity)
	for i := range payload {
		payload[i] = newT()
	}
	return &Store64[T]{
		records: make([]ConRecord, capacity),
		payload: payload,
	}
}

// GetNextSlot issues the next logical slot for both arrays.
func (s *Store64[T]) GetNextSlot() uint64 {
	if s.recordCount-s.overflowCount == uint64(len(s.records)) {
		s.overflowCount = s.recordCount
		s.wraps++
		log.Warnf("wrapping around dual record store after exceeding max size = %d", len(s.records))
	}
	slot := s.recordCount
	s.recordCount++
	return slot
}

func (s *Store64[T]) Get(slot uint64) *ConRecord {
	if slot < s.overflowCount || slot >= s.recordCount {
		return nil
	}
	return &s.records[slot-s.overflowCount]
}

// GetPayload resolves a logical slot to its cold data, nil for stale slots.
func (s *Store64[T]) GetPayload(slot uint64) *T {
	if slot < s.overflowCount || slot >= s.recordCount {
		return nil
	}
	return &s.payload[slot-s.overflowCount]
}

func (s *Store64[T]) Len() int {
	return int(s.recordCount - s.overflowCount)
}

func (s *Store64[T]) Capacity() int { return len(s.records) }

func (s *Store64[T]) IssuedSlots() uint64 { return s.recordCount }

func (s *Store64[T]) Wraps() uint64 { return s.wraps }

func (s *Store64[T]) At(i int) *ConRecord { return &s.records[:s.Len()][i] }

func (s *Store64[T]) AtPayload(i int) *T { return &s.payload[:s.Len()][i] }

func (s *Store64[T]) All(yield func(*ConRecord) bool) {
	for i := 0; i < s.Len(); i++ {
		if !yield(&s.records[i]) {
			return
		}
	}
}

func (s *Store64[T]) Snapshot() []ConRecord {
	out := make([]ConRecord, s.Len())
	copy(out, s.records[:s.Len()])
	return out
}

// SortBy reorders the valid record prefix only; the cold array keeps its
// physical order. Reporting-only, like RecordStore.SortBy.
func (s *Store64[T]) SortBy(less func(a, b *ConRecord) bool) {
	valid := s.records[:s.Len()]
	sort.SliceStable(valid, func(i, j int) bool {
		return less(&valid[i], &valid[j])
	})
}
