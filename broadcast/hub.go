package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultSubscriberBuffer = 64

// Broadcaster delivers a payload to the subscribers currently attached to a topic. It never queues
// for absent subscribers.
type Broadcaster interface {
	Push(topicKey string, payload interface{}) error
}

// ActiveBroadcaster is the broadcaster used by the notification service.
var ActiveBroadcaster Broadcaster = NewHub(DefaultSubscriberBuffer)

func RecipientTopic(recipientId types.ID) string {
	return "notifications:" + recipientId.String()
}

// Hub is the in-process topic registry: topic key -> subscriber set.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]*topic

	bufferSize int
}

type topic struct {
	mu          sync.Mutex
	subscribers map[*Subscription]struct{}
}

type Subscription struct {
	ID    string
	Topic string

	ch     chan []byte
	closed bool
	hub    *Hub
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultSubscriberBuffer
	}
	return &Hub{topics: map[string]*topic{}, bufferSize: bufferSize}
}

// Messages is closed when the subscription ends, either by Close or because the subscriber fell
// behind.
func (s *Subscription) Messages() <-chan []byte {
	return s.ch
}

func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

func (h *Hub) Subscribe(topicKey string) *Subscription {
	s := &Subscription{ID: uuid.New().String(), Topic: topicKey, ch: make(chan []byte, h.bufferSize), hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	t, found := h.topics[topicKey]
	if !found {
		t = &topic{subscribers: map[*Subscription]struct{}{}}
		h.topics[topicKey] = t
	}
	t.mu.Lock()
	t.subscribers[s] = struct{}{}
	t.mu.Unlock()

	logrus.Debugf("subscriber %s attached to topic %s", s.ID, topicKey)
	return s
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, found := h.topics[s.Topic]
	if !found {
		return
	}
	t.mu.Lock()
	t.detach(s)
	if len(t.subscribers) == 0 {
		delete(h.topics, s.Topic)
	}
	t.mu.Unlock()

	logrus.Debugf("subscriber %s detached from topic %s", s.ID, s.Topic)
}

// Push fans payload out to every subscriber of topicKey. Pushes to one topic are delivered in call
// order. A subscriber whose buffer is full is dropped instead of blocking the caller.
func (h *Hub) Push(topicKey string, payload interface{}) error {
	data, err := encode(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	t, found := h.topics[topicKey]
	h.mu.RUnlock()
	if !found {
		return nil
	}

	t.mu.Lock()
	dropped := false
	for s := range t.subscribers {
		select {
		case s.ch <- data:
		default:
			logrus.Warnf("subscriber %s of topic %s is too slow, dropped", s.ID, topicKey)
			t.detach(s)
			dropped = true
		}
	}
	emptied := dropped && len(t.subscribers) == 0
	t.mu.Unlock()

	if emptied {
		h.prune(topicKey, t)
	}
	return nil
}

// prune removes the topic entry when it is still t and has no subscriber left. The registry lock is
// taken before the topic lock, as in unsubscribe.
func (h *Hub) prune(topicKey string, t *topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topicKey] != t {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.subscribers) == 0 {
		delete(h.topics, topicKey)
	}
}

// TopicCount is the number of topics having at least one attached subscriber.
func (h *Hub) TopicCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics)
}

func (h *Hub) SubscriberCount(topicKey string) int {
	h.mu.RLock()
	t, found := h.topics[topicKey]
	h.mu.RUnlock()
	if !found {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subscribers)
}

// detach must be called with t.mu held.
func (t *topic) detach(s *Subscription) {
	if _, found := t.subscribers[s]; !found {
		return
	}
	delete(t.subscribers, s)
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func encode(payload interface{}) ([]byte, error) {
	switch p := payload.(type) {
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	default:
		return json.Marshal(payload)
	}
}
