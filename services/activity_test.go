package services

import (
	"sync"
	"testing"
	"time"

	"hangeul/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditFor(t *testing.T) {
	assert.Equal(t, 0, creditFor(-5*time.Second, 120))
	assert.Equal(t, 45, creditFor(45900*time.Millisecond, 120))
	assert.Equal(t, 120, creditFor(10*time.Minute, 120))
}

func TestRecordHeartbeatFirstAndSecond(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")

	t0 := env.now
	res, err := env.activity.RecordHeartbeat(env.ctx, userID, t0)
	require.NoError(t, err)
	assert.Equal(t, 30, res.ActiveSeconds)
	assert.Equal(t, 30, res.Credited)

	res, err = env.activity.RecordHeartbeat(env.ctx, userID, t0.Add(45*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 75, res.ActiveSeconds)
	assert.Equal(t, 45, res.Credited)

	var row models.ActivityDay
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&row).Error)
	assert.Equal(t, 75, row.ActiveSeconds)
	assert.True(t, row.LastHeartbeat.Equal(t0.Add(45*time.Second)))
}

func TestRecordHeartbeatCapsAndSkew(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	t0 := env.now

	_, err := env.activity.RecordHeartbeat(env.ctx, userID, t0)
	require.NoError(t, err)

	res, err := env.activity.RecordHeartbeat(env.ctx, userID, t0.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 120, res.Credited)
	assert.Equal(t, 150, res.ActiveSeconds)

	// A heartbeat stamped before the last one credits nothing and does not
	// move last_heartbeat backwards.
	res, err = env.activity.RecordHeartbeat(env.ctx, userID, t0.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Credited)
	assert.Equal(t, 150, res.ActiveSeconds)

	var row models.ActivityDay
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&row).Error)
	assert.True(t, row.LastHeartbeat.Equal(t0.Add(10*time.Minute)))
}

func TestRecordHeartbeatConcurrentCreditsAddUp(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	base := env.now
	env.setActiveSeconds(userID, env.today(), 500)

	const n = 12
	credited := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := env.activity.RecordHeartbeat(env.ctx, userID, base.Add(time.Duration(i*20)*time.Second))
			if assert.NoError(t, err) {
				credited[i] = res.Credited
			}
		}(i)
	}
	wg.Wait()

	sum := 0
	for _, c := range credited {
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, 120)
		sum += c
	}

	var row models.ActivityDay
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&row).Error)
	assert.Equal(t, 500+sum, row.ActiveSeconds)
}

func TestWeeklyRollupEqualsLiveSum(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")

	// Wednesday 2025-03-12; the week starts Monday 2025-03-10.
	env.setActiveSeconds(userID, "2025-03-10", 600)
	env.setActiveSeconds(userID, "2025-03-11", 900)
	env.setActiveSeconds(userID, "2025-03-09", 5000) // previous week

	res, err := env.activity.RecordHeartbeat(env.ctx, userID, env.now)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", res.WeekStart)
	assert.Equal(t, 600+900+30, res.WeekSeconds)

	var rollup models.WeeklyRollup
	require.NoError(t, env.db.Where("user_id = ? AND week_start = ?", userID, "2025-03-10").First(&rollup).Error)
	assert.Equal(t, 1530, rollup.TotalSeconds)

	// Recomputing without new data stores the same value.
	total, err := env.activity.RefreshWeeklyRollup(env.ctx, userID, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 1530, total)

	var count int64
	require.NoError(t, env.db.Model(&models.WeeklyRollup{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHeartbeatCrossingThresholdAdvancesStreak(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")
	env.setStreak(userID, 4, "2025-03-11")

	var row models.ActivityDay
	env.setActiveSeconds(userID, env.today(), 3590)
	require.NoError(t, env.db.Where("user_id = ?", userID).First(&row).Error)

	res, err := env.activity.RecordHeartbeat(env.ctx, userID, row.LastHeartbeat.Add(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3620, res.ActiveSeconds)
	require.NotNil(t, res.Streak)
	assert.Equal(t, StreakExtended, res.Streak.Kind)
	assert.Equal(t, 5, res.CurrentStreak)

	state := env.streakState(userID)
	assert.Equal(t, 5, state.CurrentStreak)
	assert.Equal(t, "2025-03-12", *state.LastSuccessDate)

	// Further heartbeats the same day never advance again.
	res, err = env.activity.RecordHeartbeat(env.ctx, userID, row.LastHeartbeat.Add(60*time.Second))
	require.NoError(t, err)
	assert.Nil(t, res.Streak)
	assert.Equal(t, 5, env.streakState(userID).CurrentStreak)
}

func TestActivityReadsDefaultToZero(t *testing.T) {
	env := newTestEnv(t)
	userID := env.user("minji")

	seconds, err := env.activity.Today(env.ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, seconds)

	week, err := env.activity.Week(env.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", week.WeekStart)
	assert.Zero(t, week.TotalSeconds)
}
