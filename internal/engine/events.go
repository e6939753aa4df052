package engine

import "time"

// Event categories.
const (
	CategoryNarration = "narration"
	CategoryLog       = "log"
	CategoryDiscovery = "discovery"
)

// subscriberBuffer is the per-subscriber backlog before events are dropped.
const subscriberBuffer = 64

// Event is a notable occurrence delivered to subscribers.
type Event struct {
	Seq         uint64    `json:"seq"`
	Tick        uint64    `json:"tick"`
	Time        time.Time `json:"time"`
	Category    string    `json:"category"` // "narration", "log", "discovery"
	Speaker     string    `json:"speaker,omitempty"`
	Trigger     string    `json:"trigger,omitempty"`
	Description string    `json:"description"`
}

// Subscribe registers a listener for every subsequent event. Slow
// listeners miss events rather than stall the simulation.
func (s *Simulation) Subscribe() (int, <-chan Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, subscriberBuffer)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (s *Simulation) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

// publish fans e out to subscribers. Caller holds s.mu.
func (s *Simulation) publish(e Event) {
	s.seq++
	e.Seq = s.seq
	e.Tick = s.lastTick
	if e.Time.IsZero() {
		e.Time = s.clock()
	}
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
