package domain

import "time"

type Snapshot struct {
	Records    []Record
	Suppressed map[ItemID]time.Time
}

func NewSnapshot() Snapshot {
	return Snapshot{Suppressed: map[ItemID]time.Time{}}
}

func (s *Snapshot) Normalize() {
	if s.Suppressed == nil {
		s.Suppressed = map[ItemID]time.Time{}
	}
}

func (s Snapshot) Index() *RecordIndex {
	index := NewRecordIndex(len(s.Records))
	for _, record := range s.Records {
		index.Upsert(record)
	}
	return index
}

// RecordIndex keeps at most one record per id in insertion order.
type RecordIndex struct {
	order   []ItemID
	records map[ItemID]Record
}

func NewRecordIndex(capacity int) *RecordIndex {
	return &RecordIndex{
		order:   make([]ItemID, 0, capacity),
		records: make(map[ItemID]Record, capacity),
	}
}

func (i *RecordIndex) Lookup(id ItemID) (Record, bool) {
	record, ok := i.records[id]
	return record, ok
}

func (i *RecordIndex) Has(id ItemID) bool {
	_, ok := i.records[id]
	return ok
}

func (i *RecordIndex) Upsert(record Record) {
	if _, ok := i.records[record.ID]; !ok {
		i.order = append(i.order, record.ID)
	}
	i.records[record.ID] = record
}

func (i *RecordIndex) Len() int {
	return len(i.order)
}

func (i *RecordIndex) All() []Record {
	records := make([]Record, 0, len(i.order))
	for _, id := range i.order {
		records = append(records, i.records[id])
	}
	return records
}
