package session

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"DayMate/internal/dates"
)

// fakeClock is a settable clock for driving sweep and touch behavior.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestGetOrCreateMaterializesDefaults(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 9, 8, 12, 0, 0, 0, time.UTC))
	st := NewStore(time.Hour, "Asia/Kolkata", clock.Now)

	key := Key{ChatID: 42, MessageID: 7}
	s := st.GetOrCreate(key)
	require.Equal(t, key, s.Key)
	require.Equal(t, ScreenMainMenu, s.Screen)
	require.Equal(t, "Asia/Kolkata", s.Timezone)
	require.Equal(t, clock.Now(), s.CreatedAt)
	require.Equal(t, 1, st.Len())

	// A second lookup sees state written through Do, not a fresh session.
	st.Do(key, func(s *Session) { s.Screen = ScreenHelp })
	again := st.GetOrCreate(key)
	require.Equal(t, ScreenHelp, again.Screen)
	require.Equal(t, 1, st.Len())
}

func TestGetOrCreateSnapshotIsDetached(t *testing.T) {
	st := NewStore(time.Hour, "UTC", nil)
	key := Key{ChatID: 42, MessageID: 7}

	// Writing through the snapshot must not reach the store.
	snap := st.GetOrCreate(key)
	snap.Screen = ScreenHelp
	snap.Buffer = "1992"
	require.Equal(t, ScreenMainMenu, st.GetOrCreate(key).Screen)
	require.Empty(t, st.GetOrCreate(key).Buffer)
}

func TestPutAndDelete(t *testing.T) {
	st := NewStore(time.Hour, "UTC", nil)
	key := Key{ChatID: 1, MessageID: 2}

	birth := &dates.Date{Year: 1992, Month: 7, Day: 15}
	st.Put(key, &Session{Screen: ScreenResultView, Flow: FlowAge, Birth: birth})

	s := st.GetOrCreate(key)
	require.Equal(t, key, s.Key)
	require.Equal(t, ScreenResultView, s.Screen)
	require.Equal(t, birth, s.Birth)

	st.Delete(key)
	require.Zero(t, st.Len())

	// Deleting an absent key is a no-op.
	st.Delete(key)
	require.Zero(t, st.Len())
}

func TestSweepEvictsOnlyIdleSessions(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 9, 8, 12, 0, 0, 0, time.UTC))
	st := NewStore(time.Hour, "UTC", clock.Now)

	stale := Key{ChatID: 1, MessageID: 1}
	fresh := Key{ChatID: 2, MessageID: 1}

	st.GetOrCreate(stale)
	clock.Advance(50 * time.Minute)
	st.GetOrCreate(fresh)
	clock.Advance(30 * time.Minute)

	// stale is 80 minutes idle, fresh only 30.
	require.Equal(t, 1, st.Sweep(clock.Now()))
	require.Equal(t, 1, st.Len())

	// The swept session comes back fresh, not with old state.
	s := st.GetOrCreate(stale)
	require.Equal(t, ScreenMainMenu, s.Screen)
}

func TestDoTouchesLastSeen(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 9, 8, 12, 0, 0, 0, time.UTC))
	st := NewStore(time.Hour, "UTC", clock.Now)
	key := Key{ChatID: 5, MessageID: 5}

	st.GetOrCreate(key)
	clock.Advance(59 * time.Minute)
	st.Do(key, func(s *Session) { s.Screen = ScreenHelp })
	clock.Advance(59 * time.Minute)

	// The Do call refreshed the idle clock, so the session survives.
	require.Zero(t, st.Sweep(clock.Now()))

	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, st.Sweep(clock.Now()))
}

func TestDoSerializesPerKey(t *testing.T) {
	st := NewStore(time.Hour, "UTC", nil)
	key := Key{ChatID: 9, MessageID: 9}

	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				st.Do(key, func(s *Session) {
					// Read-modify-write through the buffer; any interleaving
					// would lose appends.
					s.Buffer += "1"
				})
			}
		}()
	}
	wg.Wait()

	require.Len(t, st.GetOrCreate(key).Buffer, workers*perWorker)
}

func TestKeysAreIndependent(t *testing.T) {
	st := NewStore(time.Hour, "UTC", nil)

	a := Key{ChatID: 1, MessageID: 10}
	b := Key{ChatID: 1, MessageID: 11}

	st.Do(a, func(s *Session) { s.Screen = ScreenAgeCalendarPick })
	st.Do(b, func(s *Session) { s.Screen = ScreenSettingsTimezone })

	require.Equal(t, ScreenAgeCalendarPick, st.GetOrCreate(a).Screen)
	require.Equal(t, ScreenSettingsTimezone, st.GetOrCreate(b).Screen)
	require.Equal(t, 2, st.Len())
}

func TestConcurrentKeysNeverShareBuffers(t *testing.T) {
	st := NewStore(time.Hour, "UTC", nil)

	a := Key{ChatID: 1, MessageID: 10}
	b := Key{ChatID: 2, MessageID: 10}

	var wg sync.WaitGroup
	hammer := func(key Key, digit string) {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			st.Do(key, func(s *Session) { s.Buffer += digit })
		}
	}
	wg.Add(2)
	go hammer(a, "a")
	go hammer(b, "b")
	wg.Wait()

	bufA := st.GetOrCreate(a).Buffer
	bufB := st.GetOrCreate(b).Buffer
	require.Equal(t, strings.Repeat("a", 500), bufA)
	require.Equal(t, strings.Repeat("b", 500), bufB)
}

func TestResetKeepsTimezone(t *testing.T) {
	s := &Session{
		Key:      Key{ChatID: 3, MessageID: 3},
		Screen:   ScreenTimeNumericEntry,
		Flow:     FlowTime,
		Buffer:   "3600",
		Timezone: "Europe/London",
	}
	s.Reset()

	require.Equal(t, ScreenMainMenu, s.Screen)
	require.Equal(t, FlowNone, s.Flow)
	require.Empty(t, s.Buffer)
	require.Equal(t, "Europe/London", s.Timezone)
	require.Equal(t, Key{ChatID: 3, MessageID: 3}, s.Key)
}

func TestClearEntryKeepsPickedDates(t *testing.T) {
	start := &dates.Date{Year: 2024, Month: 1, Day: 1}
	s := &Session{Buffer: "199", NumYear: 1992, NumMonth: 7, Start: start}
	s.ClearEntry()

	require.Empty(t, s.Buffer)
	require.Zero(t, s.NumYear)
	require.Zero(t, s.NumMonth)
	require.Equal(t, start, s.Start)
}
