// services/notifier.go - Per-user push notifications
package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notification types pushed to connected clients.
const (
	NotifyAchievementUnlocked = "achievement_unlocked"
	NotifyStreakChanged       = "streak_changed"
	NotifyChallengeCompleted  = "daily_challenge_completed"
)

const subscriptionBuffer = 32

type Notification struct {
	Type    string      `json:"type"`
	EventID string      `json:"event_id"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload"`
}

// Hub fans notifications out to every open subscription of a user. Publish
// never blocks; a full subscription drops the message.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[*Subscription]struct{}
	log  zerolog.Logger
}

type Subscription struct {
	UserID uint
	ch     chan Notification
	hub    *Hub
	once   sync.Once
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[uint]map[*Subscription]struct{}),
		log:  log.With().Str("component", "hub").Logger(),
	}
}

func (h *Hub) Subscribe(userID uint) *Subscription {
	s := &Subscription{UserID: userID, ch: make(chan Notification, subscriptionBuffer), hub: h}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][s] = struct{}{}
	h.mu.Unlock()

	return s
}

// C delivers notifications until Close.
func (s *Subscription) C() <-chan Notification {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		if set, ok := h.subs[s.UserID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.UserID)
			}
		}
		close(s.ch)
		h.mu.Unlock()
	})
}

func (h *Hub) Publish(userID uint, n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.subs[userID] {
		select {
		case s.ch <- n:
		default:
			h.log.Warn().Uint("user_id", userID).Str("type", n.Type).Msg("subscription buffer full, dropping notification")
		}
	}
}

// Subscribers returns the number of open subscriptions for a user.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
