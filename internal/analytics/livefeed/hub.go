package livefeed

import (
	"errors"
	"strings"
	"sync"
)

const (
	KindTemperature = "temperature"
	KindEnergy      = "energy"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

var (
	ErrHubUnavailable   = errors.New("live_feed_unavailable")
	ErrInvalidEquipment = errors.New("invalid_equipment_id")
)

type Event struct {
	EquipmentID string  `json:"equipment_id"`
	Kind        string  `json:"kind"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit,omitempty"`
	Status      string  `json:"status"`
	Source      string  `json:"source"`
	RecordedAt  string  `json:"recorded_at"`
}

// Hub fans recorded readings out to subscribers of one equipment. It keeps a
// short backlog per equipment so a new subscriber sees recent readings.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
	nextID uint64
}

type Subscription struct {
	hub         *Hub
	equipmentID string
	id          uint64
	ch          chan Event
	once        sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish is a no-op for equipment nobody is watching. Slow subscribers drop
// events instead of blocking the recorder.
func (h *Hub) Publish(equipmentID string, event Event) {
	if h == nil {
		return
	}
	key := strings.TrimSpace(equipmentID)
	if key == "" {
		return
	}
	h.mu.RLock()
	current := h.streams[key]
	h.mu.RUnlock()
	if current == nil {
		return
	}

	current.mu.Lock()
	current.buffer = append(current.buffer, event)
	if len(current.buffer) > h.bufferSize {
		current.buffer = current.buffer[len(current.buffer)-h.bufferSize:]
	}
	subs := make([]chan Event, 0, len(current.subs))
	for _, ch := range current.subs {
		subs = append(subs, ch)
	}
	current.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Subscribe(equipmentID string) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, ErrHubUnavailable
	}
	key := strings.TrimSpace(equipmentID)
	if key == "" {
		return nil, nil, ErrInvalidEquipment
	}

	h.mu.Lock()
	current := h.streamLocked(key)
	current.mu.Lock()
	id := current.nextID
	current.nextID++
	ch := make(chan Event, h.subscriberBuffer)
	current.subs[id] = ch
	backlog := append([]Event(nil), current.buffer...)
	current.mu.Unlock()
	h.mu.Unlock()

	return &Subscription{
		hub:         h,
		equipmentID: key,
		id:          id,
		ch:          ch,
	}, backlog, nil
}

// Subscribers reports the number of open subscriptions for an equipment.
func (h *Hub) Subscribers(equipmentID string) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	current := h.streams[strings.TrimSpace(equipmentID)]
	h.mu.RUnlock()
	if current == nil {
		return 0
	}
	current.mu.Lock()
	defer current.mu.Unlock()
	return len(current.subs)
}

// streamLocked returns the stream for key, creating it. The caller must hold
// h.mu until the subscriber is registered.
func (h *Hub) streamLocked(key string) *stream {
	current := h.streams[key]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan Event)}
		h.streams[key] = current
	}
	return current
}

func (h *Hub) unsubscribe(key string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.streams[key]
	if current == nil {
		return
	}

	current.mu.Lock()
	delete(current.subs, id)
	empty := len(current.subs) == 0
	current.mu.Unlock()

	if empty {
		delete(h.streams, key)
	}
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.equipmentID, s.id)
	})
}
