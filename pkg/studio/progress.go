package studio

import (
	"sync"
)

const (
	subscriberBuffer = 64
	// maxFinished bounds how many terminal events are kept for replay.
	maxFinished = 256
)

// broker fans job events out to subscribers. Slow subscribers lose events
// rather than stalling the render.
type broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
	last map[string]Event
	done []string
}

func newBroker() *broker {
	return &broker{
		subs: make(map[string]map[chan Event]struct{}),
		last: make(map[string]Event),
	}
}

func (b *broker) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.last[ev.JobID]; ok && prev.Terminal() {
		return
	}
	b.last[ev.JobID] = ev
	if ev.Terminal() {
		b.done = append(b.done, ev.JobID)
		for len(b.done) > maxFinished {
			delete(b.last, b.done[0])
			b.done = b.done[1:]
		}
	}
	for ch := range b.subs[ev.JobID] {
		select {
		case ch <- ev:
		default:
		}
		if ev.Terminal() {
			close(ch)
		}
	}
	if ev.Terminal() {
		delete(b.subs, ev.JobID)
	}
}

// subscribe replays the latest event of the job, if any. A job that already
// finished yields its terminal event and a closed channel.
func (b *broker) subscribe(jobID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if ev, ok := b.last[jobID]; ok {
		ch <- ev
		if ev.Terminal() {
			close(ch)
			return ch, func() {}
		}
	}
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[chan Event]struct{})
	}
	b.subs[jobID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.subs[jobID]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
			}
		})
	}
}

// forget drops the replay state of a finished job.
func (b *broker) forget(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.last, jobID)
	for i, id := range b.done {
		if id == jobID {
			b.done = append(b.done[:i], b.done[i+1:]...)
			break
		}
	}
}

// closeAll ends every open subscription.
func (b *broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, set := range b.subs {
		for ch := range set {
			close(ch)
		}
		delete(b.subs, id)
	}
}
