package swap

import (
	"sync"

	"tokenSwap/internal/model"
)

// Journal is a sequenced record of committed events. Events are retained
// until the next Drain hands them off.
type Journal struct {
	mu     sync.Mutex
	seq    uint64
	events []model.Event
}

// NewJournal starts numbering after lastSeq.
func NewJournal(lastSeq uint64) *Journal {
	return &Journal{seq: lastSeq}
}

func (j *Journal) append(name string, poolID uint64, data interface{}) model.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++
	ev := model.Event{Seq: j.seq, Name: name, PoolID: poolID, Data: data}
	j.events = append(j.events, ev)
	return ev
}

// LastSeq returns the sequence of the newest event.
func (j *Journal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}

// Since returns the retained events with Seq > after.
func (j *Journal) Since(after uint64) []model.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]model.Event, 0)
	for _, ev := range j.events {
		if ev.Seq > after {
			out = append(out, ev)
		}
	}
	return out
}

// Drain returns events appended since the previous Drain and releases them.
func (j *Journal) Drain() []model.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.events
	if out == nil {
		out = make([]model.Event, 0)
	}
	j.events = nil
	return out
}
