package review

import "sync"

// hub is a small in-memory fanout for change events. Publish never
// blocks; subscribers with full buffers miss events.
type hub struct {
	mu   sync.Mutex
	seq  uint64
	subs map[uint64]chan Event
}

func newHub() *hub {
	return &hub{subs: map[uint64]chan Event{}}
}

func (h *hub) publish(e Event) {
	h.mu.Lock()
	chs := make([]chan Event, 0, len(h.subs))
	for _, ch := range h.subs {
		chs = append(chs, ch)
	}
	h.mu.Unlock()

	for _, ch := range chs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *hub) subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.seq++
	id := h.seq
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
	return ch, unsub
}
