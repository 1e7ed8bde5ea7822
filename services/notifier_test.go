package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHubDeliversPerUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	a1 := hub.Subscribe(1)
	a2 := hub.Subscribe(1)
	b := hub.Subscribe(2)
	assert.Equal(t, 2, hub.Subscribers(1))

	hub.Publish(1, Notification{Type: NotifyStreakChanged})

	assert.Equal(t, NotifyStreakChanged, (<-a1.C()).Type)
	assert.Equal(t, NotifyStreakChanged, (<-a2.C()).Type)
	assert.Len(t, b.C(), 0)

	a1.Close()
	a1.Close()
	assert.Equal(t, 1, hub.Subscribers(1))
	_, open := <-a1.C()
	assert.False(t, open)
}

func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sub := hub.Subscribe(7)
	defer sub.Close()

	for i := 0; i < subscriptionBuffer+5; i++ {
		hub.Publish(7, Notification{Type: NotifyAchievementUnlocked})
	}
	assert.Len(t, sub.C(), subscriptionBuffer)
}
