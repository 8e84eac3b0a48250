package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/repright/internal/kv"
	"github.com/claude/repright/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// 2025-01-01 was a Wednesday.
var wednesday = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// nextDay moves the clock to 09:00 on the following day.
func (c *clock) nextDay() {
	d := c.t.AddDate(0, 0, 1)
	c.t = time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, time.UTC)
}

type recordingStore struct {
	kv.Store
	batches  []kv.Batch
	applyErr error
	getErr   error
}

func (r *recordingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.getErr != nil {
		return nil, false, r.getErr
	}
	return r.Store.Get(ctx, key)
}

func (r *recordingStore) Apply(ctx context.Context, b kv.Batch) error {
	if r.applyErr != nil {
		return r.applyErr
	}
	r.batches = append(r.batches, b)
	return r.Store.Apply(ctx, b)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func open(t *testing.T, store kv.Store, c *clock) *Session {
	t.Helper()
	s, _, err := Open(context.Background(),
		NewStorePersister(store, "dev1", discardLogger()),
		WithClock(c.Now), WithCalendar(NewCalendar(time.UTC)), WithLogger(discardLogger()))
	require.NoError(t, err)
	return s
}

// seed writes raw field values for dev1.
func seed(t *testing.T, store kv.Store, values map[string]string) {
	t.Helper()
	var b kv.Batch
	for k, v := range values {
		b.Put(DeviceKeyPrefix("dev1")+k, []byte(v))
	}
	require.NoError(t, store.Apply(context.Background(), b))
}

func testPlan(workouts int, firstDay string) models.WorkoutPlan {
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if firstDay == "Monday" {
		days = append(days[1:], days[0])
	}
	p := models.WorkoutPlan{Title: "Test Plan", DurationWeeks: 4}
	for i := 0; i < workouts; i++ {
		p.Workouts = append(p.Workouts, models.Workout{
			Day:   days[i%7],
			Title: fmt.Sprintf("Workout %d", i),
			Exercises: []models.Exercise{
				{Name: "Squat", Sets: 2, Reps: "10", RestTime: 60},
				{Name: "Push-up", Sets: 2, Reps: "8-12", RestTime: 45},
			},
			EstimatedDuration: 30,
		})
	}
	return p
}

func TestOpenFreshDefaults(t *testing.T) {
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)

	st := s.State()
	require.False(t, st.Onboarded)
	require.Zero(t, st.StreakCount)
	require.Nil(t, st.ActivePlan)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), st.Day)
	require.True(t, s.IsScheduledDay(), "no plan counts as a scheduled day")
	_, ok := s.CurrentWorkout()
	require.False(t, ok)
}

func TestAttemptCreditsOnce(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)

	st, err := s.AttemptWorkout(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.StreakCount)
	require.True(t, st.AttemptedToday)
	require.NotNil(t, st.LastWorkoutDate)

	st, err = s.AttemptWorkout(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.StreakCount, "second attempt must not credit again")

	c.nextDay()
	report, err := s.Rollover(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Boundaries)
	require.Zero(t, report.Credited, "attempt already credited the day")

	st = s.State()
	require.Equal(t, 1, st.StreakCount)
	require.False(t, st.AttemptedToday)
	require.False(t, st.StreakJustBroken)
}

// TestRolloverCreditsAttemptedDay covers a day that was attempted but not yet
// credited when the boundary is crossed.
func TestRolloverCreditsAttemptedDay(t *testing.T) {
	store := kv.NewMemory()
	seed(t, store, map[string]string{
		"day":             "2024-12-31T00:00:00Z",
		"attemptedToday":  "true",
		"streakCount":     "2",
		"lastWorkoutDate": "2024-12-30T18:00:00Z",
	})
	s := open(t, store, &clock{t: wednesday})

	st := s.State()
	require.Equal(t, 3, st.StreakCount)
	require.False(t, st.StreakJustBroken)
	require.False(t, st.AttemptedToday)
	require.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), st.LastWorkoutDate.UTC())
}

func TestRolloverBreaksStreakOnce(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	seed(t, store, map[string]string{
		"day":         "2024-12-31T00:00:00Z",
		"streakCount": "4",
	})
	c := &clock{t: wednesday}
	s := open(t, store, c)

	st := s.State()
	require.Zero(t, st.StreakCount)
	require.True(t, st.StreakJustBroken)

	report, err := s.Rollover(ctx)
	require.NoError(t, err)
	require.False(t, report.Crossed(), "same day rollover is a no-op")

	st, err = s.AcknowledgeStreakBroken(ctx)
	require.NoError(t, err)
	require.False(t, st.StreakJustBroken)
	st, err = s.AcknowledgeStreakBroken(ctx)
	require.NoError(t, err)
	require.False(t, st.StreakJustBroken)

	c.nextDay()
	_, err = s.Rollover(ctx)
	require.NoError(t, err)
	st = s.State()
	require.Zero(t, st.StreakCount)
	require.False(t, st.StreakJustBroken, "a zero streak cannot break again")
}

func TestRestDayKeepsStreak(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.ActivatePlan(ctx, testPlan(3, "Monday"), "")
	require.NoError(t, err)

	// Work out on the three plan days.
	for i := 0; i < 3; i++ {
		require.True(t, s.IsScheduledDay())
		_, err := s.AttemptWorkout(ctx)
		require.NoError(t, err)
		c.nextDay()
		_, err = s.Rollover(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 3, s.State().StreakCount)

	// The remaining four days of the week are rest days.
	for i := 0; i < 4; i++ {
		require.False(t, s.IsScheduledDay())
		_, ok := s.CurrentWorkout()
		require.False(t, ok)
		c.nextDay()
		_, err = s.Rollover(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, s.State().StreakCount)
		require.False(t, s.State().StreakJustBroken)
	}
	require.Zero(t, s.State().CurrentDayIndex, "rotation wraps after a week")
	require.True(t, s.IsScheduledDay())
}

func TestStreakBoundsOverManyDays(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.ActivatePlan(ctx, testPlan(4, "Monday"), "")
	require.NoError(t, err)

	prev := 0
	for day := 0; day < 60; day++ {
		if day%5 != 3 {
			_, err := s.AttemptWorkout(ctx)
			require.NoError(t, err)
			_, err = s.AttemptWorkout(ctx)
			require.NoError(t, err)
		}
		c.nextDay()
		_, err := s.Rollover(ctx)
		require.NoError(t, err)
		_, err = s.Rollover(ctx)
		require.NoError(t, err)

		got := s.State().StreakCount
		require.GreaterOrEqual(t, got, 0)
		require.LessOrEqual(t, got, prev+1, "day %d: streak grew by more than one", day)
		prev = got
	}
}

func TestMultiDayGapReplaysEachBoundary(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.ActivatePlan(ctx, testPlan(3, "Monday"), "")
	require.NoError(t, err)
	_, err = s.AttemptWorkout(ctx)
	require.NoError(t, err)

	c.t = wednesday.AddDate(0, 0, 3)
	report, err := s.Rollover(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, report.Boundaries)
	require.True(t, report.StreakBroken)

	st := s.State()
	require.Zero(t, st.StreakCount)
	require.True(t, st.StreakJustBroken)
	require.Equal(t, 3, st.CurrentDayIndex)
}

func TestRolloverNeverRetroactive(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.AttemptWorkout(ctx)
	require.NoError(t, err)

	c.t = wednesday.Add(-48 * time.Hour)
	report, err := s.Rollover(ctx)
	require.NoError(t, err)
	require.False(t, report.Crossed())
	require.True(t, s.State().AttemptedToday)
}

func TestCurrentWorkoutWeekdayMapping(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}

	s := open(t, kv.NewMemory(), c)
	_, err := s.ActivatePlan(ctx, testPlan(7, "Monday"), "")
	require.NoError(t, err)
	w, ok := s.CurrentWorkout()
	require.True(t, ok)
	require.Equal(t, "Workout 2", w.Title)

	s = open(t, kv.NewMemory(), c)
	_, err = s.ActivatePlan(ctx, testPlan(7, "Sunday"), "")
	require.NoError(t, err)
	w, ok = s.CurrentWorkout()
	require.True(t, ok)
	require.Equal(t, "Workout 3", w.Title)
}

func TestPartialWeekRotation(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.ActivatePlan(ctx, testPlan(3, "Monday"), "")
	require.NoError(t, err)

	want := []int{0, 1, 2, 3, 4, 5, 6, 0, 1}
	for i, idx := range want {
		require.Equal(t, idx, s.State().CurrentDayIndex, "day %d", i)
		c.nextDay()
		_, err := s.Rollover(ctx)
		require.NoError(t, err)
	}
}

func TestLongPlanRotatesThroughEveryWorkout(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	c := &clock{t: wednesday}
	s := open(t, store, c)
	_, err := s.ActivatePlan(ctx, testPlan(9, "Monday"), "")
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 9; i++ {
		require.Equal(t, i, s.State().CurrentDayIndex)
		require.True(t, s.IsScheduledDay())
		w, ok := s.CurrentWorkout()
		require.True(t, ok)
		seen[w.Title] = true
		c.nextDay()
		_, err := s.Rollover(ctx)
		require.NoError(t, err)
	}
	require.Len(t, seen, 9)
	require.Zero(t, s.State().CurrentDayIndex)

	// A stored index past the first week survives a reload.
	for i := 0; i < 8; i++ {
		c.nextDay()
		_, err := s.Rollover(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 8, open(t, store, c).State().CurrentDayIndex)
}

func TestActivatePlanRejectsUnwalkablePlans(t *testing.T) {
	ctx := context.Background()
	s := open(t, kv.NewMemory(), &clock{t: wednesday})

	zeroSets := testPlan(3, "Monday")
	zeroSets.Workouts[0].Exercises[0].Sets = 0
	negativeSets := testPlan(3, "Monday")
	negativeSets.Workouts[1].Exercises[1].Sets = -2
	negativeRest := testPlan(3, "Monday")
	negativeRest.Workouts[0].Exercises[0].RestTime = -1
	duplicate := testPlan(3, "Monday")
	id := uuid.New()
	duplicate.Workouts[0].Exercises[0].ID = id
	duplicate.Workouts[2].Exercises[1].ID = id

	for name, plan := range map[string]models.WorkoutPlan{
		"zero sets":     zeroSets,
		"negative sets": negativeSets,
		"negative rest": negativeRest,
		"duplicate id":  duplicate,
	} {
		st, err := s.ActivatePlan(ctx, plan, "")
		require.ErrorIs(t, err, ErrInvalidInput, name)
		require.Nil(t, st.ActivePlan, name)
	}
}

func TestPauseResumeNoDoubleCount(t *testing.T) {
	ctx := context.Background()

	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.Resume(ctx)
	require.NoError(t, err)
	c.Advance(95 * time.Second)
	_, err = s.Pause(ctx)
	require.NoError(t, err)
	_, err = s.Resume(ctx)
	require.NoError(t, err)
	st, err := s.Pause(ctx)
	require.NoError(t, err)

	c2 := &clock{t: wednesday}
	single := open(t, kv.NewMemory(), c2)
	_, err = single.Resume(ctx)
	require.NoError(t, err)
	c2.Advance(95 * time.Second)
	want, err := single.Pause(ctx)
	require.NoError(t, err)

	require.Equal(t, want.AccumulatedSecondsToday, st.AccumulatedSecondsToday)
	require.Equal(t, 95, st.AccumulatedSecondsToday)
	require.Equal(t, 1, st.WorkoutMinutesToday)
	require.Nil(t, st.SessionStartTime)
}

func TestResumeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)

	st, err := s.Resume(ctx)
	require.NoError(t, err)
	start := *st.SessionStartTime

	c.Advance(30 * time.Second)
	st, err = s.Resume(ctx)
	require.NoError(t, err)
	require.Equal(t, start, *st.SessionStartTime)
	require.Equal(t, 30*time.Second, s.Elapsed())
}

func TestStaleSessionDiscarded(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.Resume(ctx)
	require.NoError(t, err)
	c.Advance(10 * time.Minute)
	_, err = s.Pause(ctx)
	require.NoError(t, err)
	_, err = s.Resume(ctx)
	require.NoError(t, err)

	c.nextDay()
	report, err := s.Rollover(ctx)
	require.NoError(t, err)
	require.True(t, report.DiscardedSession)

	st := s.State()
	require.Nil(t, st.SessionStartTime)
	require.Zero(t, st.AccumulatedSecondsToday)
	require.Zero(t, st.WorkoutMinutesToday)
}

func TestCompleteWorkout(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)

	streak := s.State().StreakCount
	st, err := s.CompleteWorkout(ctx, 42)
	require.NoError(t, err)
	require.True(t, st.CompletedToday)
	require.Equal(t, 42, st.WorkoutMinutesToday)
	require.Equal(t, streak, st.StreakCount, "completion does not touch the streak")

	_, err = s.CompleteWorkout(ctx, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompleteWorkoutFoldsRunningTimer(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.Resume(ctx)
	require.NoError(t, err)
	c.Advance(125 * time.Second)

	st, err := s.CompleteWorkout(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 125, st.AccumulatedSecondsToday)
	require.Equal(t, 2, st.WorkoutMinutesToday)
	require.Nil(t, st.SessionStartTime)
}

func TestMalformedStoredValuesFallBack(t *testing.T) {
	store := kv.NewMemory()
	seed(t, store, map[string]string{
		"onboarded":       "yes",
		"streakCount":     "abc",
		"profile":         "{",
		"setProgress":     `[{"exerciseId":"not-a-uuid","completedSets":2}]`,
		"lastWorkoutDate": "yesterday",
		"activePlanName":  "Strength",
	})
	s := open(t, store, &clock{t: wednesday})

	st := s.State()
	require.False(t, st.Onboarded)
	require.Zero(t, st.StreakCount)
	require.Nil(t, st.Profile)
	require.Empty(t, st.SetProgress)
	require.Nil(t, st.LastWorkoutDate)
	require.Equal(t, "Strength", st.ActivePlanName)
}

func TestLoadStoreErrorIsReturned(t *testing.T) {
	store := &recordingStore{Store: kv.NewMemory(), getErr: errors.New("disk gone")}
	_, _, err := Open(context.Background(), NewStorePersister(store, "dev1", discardLogger()),
		WithClock((&clock{t: wednesday}).Now), WithLogger(discardLogger()))
	require.Error(t, err)
}

func TestSaveWritesOnlyChangedFields(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{Store: kv.NewMemory()}
	c := &clock{t: wednesday}
	s := open(t, store, c)
	store.batches = nil

	_, err := s.Resume(ctx)
	require.NoError(t, err)
	require.Len(t, store.batches, 1)
	b := store.batches[0]
	require.Len(t, b.Set, 1)
	require.Contains(t, b.Set, DeviceKeyPrefix("dev1")+"sessionStartTime")

	_, err = s.Pause(ctx)
	require.NoError(t, err)
	b = store.batches[1]
	require.Equal(t, []string{DeviceKeyPrefix("dev1") + "sessionStartTime"}, b.Remove)
}

func TestSaveFailureDiscardsTransition(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{Store: kv.NewMemory()}
	s := open(t, store, &clock{t: wednesday})

	store.applyErr = errors.New("read-only")
	st, err := s.AttemptWorkout(ctx)
	require.Error(t, err)
	require.Zero(t, st.StreakCount)
	require.False(t, s.State().AttemptedToday)
}

func TestSaveFailureRetriedByNextTransition(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{Store: kv.NewMemory()}
	c := &clock{t: wednesday}
	s := open(t, store, c)

	store.applyErr = errors.New("read-only")
	_, err := s.AttemptWorkout(ctx)
	require.Error(t, err)

	store.applyErr = nil
	_, err = s.Resume(ctx)
	require.NoError(t, err)
	_, err = s.AttemptWorkout(ctx)
	require.NoError(t, err)
	_, err = s.Pause(ctx)
	require.NoError(t, err)

	reopened := open(t, store, c)
	st := reopened.State()
	require.Equal(t, s.State().StreakCount, st.StreakCount)
	require.Equal(t, 1, st.StreakCount)
	require.True(t, st.AttemptedToday)
}

func TestFailedRolloverIsReplayed(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{Store: kv.NewMemory()}
	c := &clock{t: wednesday}
	s := open(t, store, c)
	_, err := s.AttemptWorkout(ctx)
	require.NoError(t, err)

	c.nextDay()
	store.applyErr = errors.New("read-only")
	_, err = s.Rollover(ctx)
	require.Error(t, err)
	require.True(t, s.State().AttemptedToday)

	store.applyErr = nil
	report, err := s.Rollover(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Boundaries)
	require.False(t, s.State().AttemptedToday)
	require.Equal(t, 1, open(t, store, c).State().StreakCount)
}

func TestStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	c := &clock{t: wednesday}
	s := open(t, store, c)

	_, err := s.ActivatePlan(ctx, testPlan(3, "Monday"), "Three day split")
	require.NoError(t, err)
	w, ok := s.CurrentWorkout()
	require.True(t, ok)
	exID := w.Exercises[0].ID
	_, err = s.AttemptWorkout(ctx)
	require.NoError(t, err)
	_, err = s.RecordSetProgress(ctx, exID, 1)
	require.NoError(t, err)

	c.Advance(time.Hour)
	reopened := open(t, store, c)
	st := reopened.State()
	require.Equal(t, 1, st.StreakCount)
	require.True(t, st.AttemptedToday)
	require.Equal(t, "Three day split", st.ActivePlanName)
	require.Equal(t, 1, reopened.SetProgress(exID))
	require.Equal(t, s.State().ActivePlan.ID, st.ActivePlan.ID)
}

func TestActivatePlanResetsRotation(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)
	_, err := s.ActivatePlan(ctx, testPlan(3, "Monday"), "")
	require.NoError(t, err)
	c.nextDay()
	_, err = s.Rollover(ctx)
	require.NoError(t, err)
	_, err = s.RecordSetProgress(ctx, uuid.New(), 2)
	require.NoError(t, err)

	st, err := s.ActivatePlan(ctx, testPlan(4, "Monday"), "New")
	require.NoError(t, err)
	require.Zero(t, st.CurrentDayIndex)
	require.Empty(t, st.SetProgress)
	require.Equal(t, "New", st.ActivePlanName)

	_, err = s.ActivatePlan(ctx, models.WorkoutPlan{}, "empty")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestClearPlanMakesEveryDayScheduled(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	c := &clock{t: wednesday}
	s := open(t, store, c)
	_, err := s.ActivatePlan(ctx, testPlan(3, "Monday"), "Split")
	require.NoError(t, err)

	st, err := s.ClearPlan(ctx)
	require.NoError(t, err)
	require.Nil(t, st.ActivePlan)
	require.Empty(t, st.ActivePlanName)
	require.True(t, s.IsScheduledDay())
	_, ok := s.CurrentWorkout()
	require.False(t, ok)

	reopened := open(t, store, c)
	require.Nil(t, reopened.State().ActivePlan)
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	c := &clock{t: wednesday}
	s := open(t, store, c)
	_, err := s.CompleteOnboarding(ctx, models.UserProfile{Name: "Sam", Age: 30})
	require.NoError(t, err)
	_, err = s.AttemptWorkout(ctx)
	require.NoError(t, err)

	st, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	require.False(t, st.Onboarded)
	require.Zero(t, st.StreakCount)

	keys, err := store.Keys(ctx, DeviceKeyPrefix("dev1"))
	require.NoError(t, err)
	require.Equal(t, []string{DeviceKeyPrefix("dev1") + "day"}, keys)

	require.False(t, open(t, store, c).State().Onboarded)
}

// TestThreeDayPlanScenario follows a three-day plan through a completed day
// and a skipped one.
func TestThreeDayPlanScenario(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: wednesday}
	s := open(t, kv.NewMemory(), c)

	profile, err := models.ProfileInput{
		Name:                  "Alex",
		Age:                   "29",
		FitnessLevel:          models.LevelBeginner,
		Goals:                 []models.FitnessGoal{models.GoalMuscleGain},
		PreferredWorkoutTypes: []models.WorkoutType{models.TypeWeightlifting},
		AvailableEquipment:    []models.Equipment{models.EquipmentDumbbells},
		WorkoutFrequency:      models.FrequencyThreeDays,
	}.Profile()
	require.NoError(t, err)
	_, err = s.CompleteOnboarding(ctx, profile)
	require.NoError(t, err)
	_, err = s.ActivatePlan(ctx, testPlan(profile.WorkoutFrequency.DaysPerWeek(), "Monday"), "")
	require.NoError(t, err)

	// Day 1: every set of every exercise.
	w, ok := s.CurrentWorkout()
	require.True(t, ok)
	_, err = s.AttemptWorkout(ctx)
	require.NoError(t, err)
	for _, ex := range w.Exercises {
		_, err = s.RecordSetProgress(ctx, ex.ID, ex.Sets)
		require.NoError(t, err)
	}
	st, err := s.CompleteWorkout(ctx, 0)
	require.NoError(t, err)
	require.True(t, st.CompletedToday)
	require.Equal(t, 1, st.StreakCount)

	c.nextDay()
	_, err = s.Rollover(ctx)
	require.NoError(t, err)
	st = s.State()
	require.Equal(t, 1, st.StreakCount)
	require.Equal(t, 1, st.CurrentDayIndex)
	require.Empty(t, st.SetProgress)

	// Day 2 is a plan day and the app stays closed.
	c.nextDay()
	_, err = s.Rollover(ctx)
	require.NoError(t, err)
	st = s.State()
	require.Zero(t, st.StreakCount)
	require.True(t, st.StreakJustBroken)
}
