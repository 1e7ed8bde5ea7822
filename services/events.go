// services/events.go - Typed progression events
package services

import (
	"time"

	"hangeul/models"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventContentAdded       EventKind = "content_added"
	EventContentDeleted     EventKind = "content_deleted"
	EventQuizSubmitted      EventKind = "quiz_submitted"
	EventHeartbeatRecorded  EventKind = "heartbeat_recorded"
	EventStreakChanged      EventKind = "streak_changed"
	EventChallengeCompleted EventKind = "challenge_completed"
	EventPageLoaded         EventKind = "page_loaded"
	EventAskedReset         EventKind = "asked_reset"
)

// Event is one user action or derived change fed to the Engine.
type Event struct {
	ID     uuid.UUID
	Kind   EventKind
	UserID uint
	At     time.Time

	Domain   models.Domain
	QuizType models.QuizType
	Streak   *StreakTransition
}

func NewEvent(kind EventKind, userID uint, at time.Time) Event {
	return Event{ID: uuid.New(), Kind: kind, UserID: userID, At: at}
}

// Inputs returns the aggregates this event may have changed.
func (e Event) Inputs() Input {
	switch e.Kind {
	case EventContentAdded:
		switch e.Domain {
		case models.DomainGrammar:
			return InputGrammarTotal
		case models.DomainVocabulary:
			return InputVocabularyTotal | InputVocabularyToday
		}
		return InputGrammarTotal | InputVocabularyTotal | InputVocabularyToday
	case EventContentDeleted:
		// Removing the last unasked item can complete the capstone.
		if e.Domain == models.DomainGrammar {
			return InputGrammarTotal
		}
		if e.Domain == models.DomainVocabulary {
			return InputVocabularyTotal
		}
		return InputGrammarTotal | InputVocabularyTotal
	case EventQuizSubmitted:
		in := InputQuizCount
		if e.QuizType.UsesGrammar() {
			in |= InputGrammarAsked
		}
		if e.QuizType.UsesVocabulary() {
			in |= InputVocabularyAsked
		}
		if e.QuizType == models.QuizGeneral {
			in |= InputPerfectGeneral
		}
		return in
	case EventStreakChanged:
		return InputStreak
	case EventChallengeCompleted:
		return InputPerfectDays
	case EventPageLoaded:
		return InputAll
	}
	// Heartbeats reach achievements through StreakChanged; resets can only
	// lower counts.
	return 0
}

// AffectsChallenge reports whether the event can change a daily sub-goal.
func (e Event) AffectsChallenge() bool {
	switch e.Kind {
	case EventContentAdded, EventHeartbeatRecorded, EventPageLoaded:
		return true
	case EventQuizSubmitted:
		return e.QuizType.Daily()
	}
	return false
}
