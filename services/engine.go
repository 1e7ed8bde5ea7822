// services/engine.go - Event dispatch between user actions and derived state
package services

import (
	"context"
	"time"

	"hangeul/models"

	"github.com/rs/zerolog"
)

// Engine is the entry point for route handlers. Each hook performs the
// primary write, then dispatches an event; derived-state failures are logged
// and never fail the hook.
type Engine struct {
	clock        *Clock
	activity     *ActivityLedger
	streaks      *StreakTracker
	challenges   *ChallengeEvaluator
	quizzes      *QuizTracker
	achievements *AchievementEngine
	content      *ContentService
	hub          *Hub
	log          zerolog.Logger
}

func NewEngine(
	clock *Clock,
	activity *ActivityLedger,
	streaks *StreakTracker,
	challenges *ChallengeEvaluator,
	quizzes *QuizTracker,
	achievements *AchievementEngine,
	content *ContentService,
	hub *Hub,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		clock:        clock,
		activity:     activity,
		streaks:      streaks,
		challenges:   challenges,
		quizzes:      quizzes,
		achievements: achievements,
		content:      content,
		hub:          hub,
		log:          log.With().Str("component", "engine").Logger(),
	}
}

func (e *Engine) event(kind EventKind, userID uint) Event {
	return NewEvent(kind, userID, e.clock.Now())
}

// Dispatch runs the challenge check when the event can change a daily goal,
// then re-evaluates the achievements that read what the event changed.
func (e *Engine) Dispatch(ctx context.Context, ev Event) []Unlock {
	log := e.log.With().Uint("user_id", ev.UserID).Str("event", string(ev.Kind)).Logger()

	if ev.Kind == EventStreakChanged && ev.Streak != nil {
		e.publish(ev, NotifyStreakChanged, ev.Streak)
	}

	var unlocks []Unlock
	if ev.AffectsChallenge() {
		res, err := e.challenges.CheckCompletion(ctx, ev.UserID)
		if err != nil {
			log.Error().Err(err).Msg("daily challenge check failed")
		} else if res.Counted {
			done := e.event(EventChallengeCompleted, ev.UserID)
			e.publish(done, NotifyChallengeCompleted, res)
			unlocks = append(unlocks, e.Dispatch(ctx, done)...)
		}
	}

	if inputs := ev.Inputs(); inputs != 0 {
		got, err := e.achievements.Evaluate(ctx, ev.UserID, inputs)
		if err != nil {
			log.Error().Err(err).Msg("achievement evaluation failed")
		}
		for _, u := range got {
			e.publish(ev, NotifyAchievementUnlocked, u)
		}
		unlocks = append(unlocks, got...)
	}

	return unlocks
}

func (e *Engine) publish(ev Event, kind string, payload interface{}) {
	e.hub.Publish(ev.UserID, Notification{
		Type:    kind,
		EventID: ev.ID.String(),
		At:      ev.At,
		Payload: payload,
	})
}

// OnUserRegistered seeds the new account's achievements.
func (e *Engine) OnUserRegistered(ctx context.Context, userID uint) {
	if _, err := e.achievements.EnsureSeeded(ctx, userID); err != nil {
		e.log.Error().Err(err).Uint("user_id", userID).Msg("seeding achievements failed")
	}
}

// OnContentCreated is called after grammar or vocabulary rows were inserted.
func (e *Engine) OnContentCreated(ctx context.Context, userID uint, domain models.Domain) []Unlock {
	ev := e.event(EventContentAdded, userID)
	ev.Domain = domain
	return e.Dispatch(ctx, ev)
}

// OnContentDeleted is called after one of the user's items was removed.
func (e *Engine) OnContentDeleted(ctx context.Context, userID uint, domain models.Domain) []Unlock {
	ev := e.event(EventContentDeleted, userID)
	ev.Domain = domain
	return e.Dispatch(ctx, ev)
}

// QuizOutcome is a recorded submission plus what it unlocked.
type QuizOutcome struct {
	*SubmitResult
	Unlocks []Unlock `json:"unlocks"`
}

// OnQuizSubmitted records the submission and dispatches its event. Only the
// submission itself can fail the call.
func (e *Engine) OnQuizSubmitted(ctx context.Context, userID uint, sub Submission) (*QuizOutcome, error) {
	res, err := e.quizzes.Submit(ctx, userID, sub)
	if err != nil {
		return nil, err
	}

	ev := e.event(EventQuizSubmitted, userID)
	ev.QuizType = sub.Type
	return &QuizOutcome{SubmitResult: res, Unlocks: e.Dispatch(ctx, ev)}, nil
}

type HeartbeatOutcome struct {
	*HeartbeatResult
	Unlocks []Unlock `json:"unlocks"`
}

// OnHeartbeat credits study time and, when the daily threshold was crossed,
// dispatches the streak change.
func (e *Engine) OnHeartbeat(ctx context.Context, userID uint, now time.Time) (*HeartbeatOutcome, error) {
	res, err := e.activity.RecordHeartbeat(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	unlocks := e.Dispatch(ctx, e.event(EventHeartbeatRecorded, userID))
	if res.Streak != nil {
		ev := e.event(EventStreakChanged, userID)
		ev.Streak = res.Streak
		unlocks = append(unlocks, e.Dispatch(ctx, ev)...)
	}
	return &HeartbeatOutcome{HeartbeatResult: res, Unlocks: unlocks}, nil
}

// OnPageLoad runs the full re-evaluation chain: seeding for accounts that
// predate the catalogue, the stale streak check, the challenge check and
// every achievement.
func (e *Engine) OnPageLoad(ctx context.Context, userID uint) []Unlock {
	if _, err := e.achievements.EnsureSeeded(ctx, userID); err != nil {
		e.log.Error().Err(err).Uint("user_id", userID).Msg("seeding achievements failed")
	}

	var unlocks []Unlock
	streak, err := e.streaks.Current(ctx, userID)
	if err != nil {
		e.log.Error().Err(err).Uint("user_id", userID).Msg("streak check failed")
	} else if streak.Decay != nil {
		ev := e.event(EventStreakChanged, userID)
		ev.Streak = streak.Decay
		unlocks = append(unlocks, e.Dispatch(ctx, ev)...)
	}

	return append(unlocks, e.Dispatch(ctx, e.event(EventPageLoaded, userID))...)
}

// ResetAsked clears the asked flags of one domain.
func (e *Engine) ResetAsked(ctx context.Context, userID uint, domain models.Domain) (int64, error) {
	n, err := e.quizzes.ResetAsked(ctx, userID, domain)
	if err != nil {
		return 0, err
	}
	ev := e.event(EventAskedReset, userID)
	ev.Domain = domain
	e.Dispatch(ctx, ev)
	return n, nil
}

// Streak reads the user's streak, publishing a decay if the read caused one.
func (e *Engine) Streak(ctx context.Context, userID uint) (*StreakStatus, error) {
	streak, err := e.streaks.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if streak.Decay != nil {
		ev := e.event(EventStreakChanged, userID)
		ev.Streak = streak.Decay
		e.Dispatch(ctx, ev)
	}
	return streak, nil
}

func (e *Engine) Achievements(ctx context.Context, userID uint) ([]models.Achievement, error) {
	return e.achievements.List(ctx, userID)
}

func (e *Engine) Challenges(ctx context.Context, userID uint) (*ChallengeStatus, error) {
	return e.challenges.Status(ctx, userID, e.clock.Today())
}

// TodaySeconds is the study time credited on the current business day.
func (e *Engine) TodaySeconds(ctx context.Context, userID uint) (int, error) {
	return e.activity.Today(ctx, userID)
}

func (e *Engine) PerfectDays(ctx context.Context, userID uint) (int, error) {
	return e.challenges.PerfectDays(ctx, userID)
}
