package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/daygate"
	"github.com/PancyStudios/CapsFridayBot/pkg/warnings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-03-08 is a Friday
var fridayNoon = time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

type notice struct {
	to   User
	text string
}

type kick struct {
	room   string
	user   User
	reason string
}

type fakeActions struct {
	mu        sync.Mutex
	notices   []notice
	kicks     []kick
	noticeErr error
	kickErr   error
}

func (f *fakeActions) Notice(_ context.Context, to User, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, notice{to: to, text: text})
	return f.noticeErr
}

func (f *fakeActions) Kick(_ context.Context, room string, user User, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks = append(f.kicks, kick{room: room, user: user, reason: reason})
	return f.kickErr
}

func (f *fakeActions) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notices), len(f.kicks)
}

// spyStore counts calls and can fail on demand
type spyStore struct {
	*warnings.MemoryStore
	mu      sync.Mutex
	gets    int
	upserts int
	deletes int
	failOn  string
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: warnings.NewMemoryStore()}
}

func (s *spyStore) fail(op, identity string) error {
	if s.failOn == op {
		return &warnings.StorageError{Op: op, Identity: identity, Err: errors.New("backend down")}
	}
	return nil
}

func (s *spyStore) Get(ctx context.Context, identity string) (time.Time, bool, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	if err := s.fail("get", identity); err != nil {
		return time.Time{}, false, err
	}
	return s.MemoryStore.Get(ctx, identity)
}

func (s *spyStore) Upsert(ctx context.Context, identity string, at time.Time) error {
	s.mu.Lock()
	s.upserts++
	s.mu.Unlock()
	if err := s.fail("upsert", identity); err != nil {
		return err
	}
	return s.MemoryStore.Upsert(ctx, identity, at)
}

func (s *spyStore) Delete(ctx context.Context, identity string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	if err := s.fail("delete", identity); err != nil {
		return err
	}
	return s.MemoryStore.Delete(ctx, identity)
}

func (s *spyStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets + s.upserts + s.deletes
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	engine    *Engine
	store     *spyStore
	actions   *fakeActions
	clock     *clock
	decisions []Decision
}

func newHarness(t *testing.T, whitelist ...string) *harness {
	t.Helper()

	gate, err := daygate.New("UTC")
	require.NoError(t, err)

	h := &harness{
		store:   newSpyStore(),
		actions: &fakeActions{},
		clock:   &clock{now: fridayNoon},
	}

	engine, err := NewEngine(h.store, h.actions, Options{
		Gate:      gate,
		Whitelist: NewWhitelist(whitelist...),
		Window:    15 * time.Minute,
		Now:       h.clock.Now,
		Observers: []Observer{ObserverFunc(func(d Decision) { h.decisions = append(h.decisions, d) })},
	})
	require.NoError(t, err)
	h.engine = engine
	return h
}

func (h *harness) send(t *testing.T, name, text string) Decision {
	t.Helper()
	d, err := h.engine.Handle(context.Background(), Message{
		Sender:  User{ID: "id-" + name, Name: name},
		Room:    "guild-1",
		Channel: "chan-1",
		Text:    text,
	})
	require.NoError(t, err)
	return d
}

func (h *harness) record(t *testing.T, name string) (time.Time, bool) {
	t.Helper()
	at, ok, err := h.store.MemoryStore.Get(context.Background(), name)
	require.NoError(t, err)
	return at, ok
}

func TestNewEngineValidation(t *testing.T) {
	gate, err := daygate.New("")
	require.NoError(t, err)

	_, err = NewEngine(nil, &fakeActions{}, Options{Gate: gate})
	assert.Error(t, err)

	_, err = NewEngine(warnings.NewMemoryStore(), nil, Options{Gate: gate})
	assert.Error(t, err)

	_, err = NewEngine(warnings.NewMemoryStore(), &fakeActions{}, Options{})
	assert.Error(t, err)

	e, err := NewEngine(warnings.NewMemoryStore(), &fakeActions{}, Options{Gate: gate})
	require.NoError(t, err)
	assert.Equal(t, DefaultWindow, e.Window())
}

func TestInactiveDayShortCircuits(t *testing.T) {
	h := newHarness(t, "boss")
	h.clock.now = fridayNoon.AddDate(0, 0, 1)

	d := h.send(t, "alice", "quiet please")
	assert.Equal(t, OutcomeInactive, d.Outcome)

	d = h.send(t, "boss", "quiet please")
	assert.Equal(t, OutcomeInactive, d.Outcome)

	assert.Zero(t, h.store.calls(), "the store must not be touched when the gate is closed")
	n, k := h.actions.counts()
	assert.Zero(t, n)
	assert.Zero(t, k)
}

func TestGateIsEvaluatedPerMessage(t *testing.T) {
	h := newHarness(t)
	h.clock.now = time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, OutcomeInactive, h.send(t, "alice", "quiet").Outcome)

	h.clock.Advance(2 * time.Minute)
	assert.Equal(t, OutcomeWarned, h.send(t, "alice", "quiet").Outcome)
}

func TestWhitelistedUserIsNeverTouched(t *testing.T) {
	h := newHarness(t, " Boss ", "mod-id")
	ctx := context.Background()

	// A record that predates the whitelisting must survive
	existing := fridayNoon.Add(-time.Minute)
	require.NoError(t, h.store.MemoryStore.Upsert(ctx, "boss", existing))

	for _, text := range []string{"lowercase", "UPPERCASE", "MiXeD", ""} {
		d := h.send(t, "BOSS", text)
		assert.Equal(t, OutcomeWhitelisted, d.Outcome)
	}

	// Whitelisted by user ID
	d, err := h.engine.Handle(ctx, Message{Sender: User{ID: "MOD-ID", Name: "somebody"}, Text: "quiet"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWhitelisted, d.Outcome)

	assert.Zero(t, h.store.calls())
	at, ok := h.record(t, "boss")
	require.True(t, ok)
	assert.True(t, at.Equal(existing))

	n, k := h.actions.counts()
	assert.Zero(t, n)
	assert.Zero(t, k)
}

func TestCompliantMessageAlwaysDeletes(t *testing.T) {
	h := newHarness(t)

	// No record: delete is still issued and is harmless
	d := h.send(t, "alice", "HELLO WORLD")
	assert.Equal(t, OutcomeCompliant, d.Outcome)
	assert.Equal(t, 100.0, d.Score)
	assert.Equal(t, 1, h.store.deletes)
	assert.Zero(t, h.store.gets)

	// With a live record: the record is cleared
	h.send(t, "alice", "quiet")
	_, ok := h.record(t, "alice")
	require.True(t, ok)

	h.clock.Advance(time.Minute)
	d = h.send(t, "alice", "LOUD AND CLEAR http://lower.case/url")
	assert.Equal(t, OutcomeCompliant, d.Outcome)
	_, ok = h.record(t, "alice")
	assert.False(t, ok)

	n, k := h.actions.counts()
	assert.Equal(t, 1, n)
	assert.Zero(t, k)
}

func TestThresholdBoundary(t *testing.T) {
	h := newHarness(t)

	// 4 of 5 letters upper case: exactly 80%
	assert.Equal(t, OutcomeCompliant, h.send(t, "alice", "ABCDe").Outcome)
	// 3 of 4: 75%
	assert.Equal(t, OutcomeWarned, h.send(t, "bob", "ABCd").Outcome)
	// No letters at all counts as compliant
	assert.Equal(t, OutcomeCompliant, h.send(t, "carol", "1234 !!! :)").Outcome)
}

func TestFirstOffense(t *testing.T) {
	h := newHarness(t)

	d := h.send(t, "Alice", "hello world")
	assert.Equal(t, OutcomeWarned, d.Outcome)
	assert.Equal(t, "alice", d.Identity)
	assert.Nil(t, d.Previous)

	at, ok := h.record(t, "alice")
	require.True(t, ok)
	assert.True(t, at.Equal(fridayNoon))
	assert.Equal(t, 1, h.store.MemoryStore.Len())

	require.Len(t, h.actions.notices, 1)
	assert.Equal(t, WarningNotice, h.actions.notices[0].text)
	assert.Equal(t, "Alice", h.actions.notices[0].to.Name)
	assert.Empty(t, h.actions.kicks)
}

func TestSecondOffenseInsideWindowKicks(t *testing.T) {
	h := newHarness(t)

	h.send(t, "Alice", "hello world")
	h.clock.Advance(14*time.Minute + 59*time.Second)

	d := h.send(t, "alice", "still quiet")
	assert.Equal(t, OutcomeKicked, d.Outcome)
	require.NotNil(t, d.Previous)
	assert.True(t, d.Previous.Equal(fridayNoon))

	_, ok := h.record(t, "alice")
	assert.False(t, ok)

	require.Len(t, h.actions.notices, 1, "no notice on the kick path")
	require.Len(t, h.actions.kicks, 1)
	assert.Equal(t, kick{room: "guild-1", user: User{ID: "id-alice", Name: "alice"}, reason: KickReason}, h.actions.kicks[0])
}

func TestOffenseAfterWindowRenews(t *testing.T) {
	h := newHarness(t)

	h.send(t, "alice", "hello world")
	h.clock.Advance(15 * time.Minute)
	second := h.clock.Now()

	d := h.send(t, "alice", "hello again")
	assert.Equal(t, OutcomeRenewed, d.Outcome)

	at, ok := h.record(t, "alice")
	require.True(t, ok)
	assert.True(t, at.Equal(second))

	require.Len(t, h.actions.notices, 2)
	assert.Equal(t, h.actions.notices[0].text, h.actions.notices[1].text)
	assert.Empty(t, h.actions.kicks)

	// The renewed warning is live again
	h.clock.Advance(time.Minute)
	assert.Equal(t, OutcomeKicked, h.send(t, "alice", "nope").Outcome)
}

func TestAliceScenario(t *testing.T) {
	h := newHarness(t)

	d := h.send(t, "Alice", "hello world")
	assert.Equal(t, OutcomeWarned, d.Outcome)
	assert.Equal(t, 0.0, d.Score)
	at, ok := h.record(t, "Alice")
	require.True(t, ok)
	assert.True(t, at.Equal(fridayNoon))

	h.clock.Advance(5 * time.Minute)
	d = h.send(t, "Alice", "still quiet")
	assert.Equal(t, OutcomeKicked, d.Outcome)
	_, ok = h.record(t, "Alice")
	assert.False(t, ok)

	h.clock.Advance(15 * time.Minute)
	d = h.send(t, "Alice", "HELLO WORLD")
	assert.Equal(t, OutcomeCompliant, d.Outcome)
	assert.Equal(t, 100.0, d.Score)
	_, ok = h.record(t, "Alice")
	assert.False(t, ok)

	n, k := h.actions.counts()
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, k)
}

func TestUsersAreIndependent(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, OutcomeWarned, h.send(t, "alice", "quiet").Outcome)
	assert.Equal(t, OutcomeWarned, h.send(t, "bob", "quiet").Outcome)
	assert.Equal(t, OutcomeKicked, h.send(t, "alice", "quiet").Outcome)

	_, ok := h.record(t, "bob")
	assert.True(t, ok)
}

func TestOutboundFailuresDoNotStopStateChanges(t *testing.T) {
	h := newHarness(t)
	h.actions.noticeErr = errors.New("dm closed")
	h.actions.kickErr = errors.New("missing permissions")

	assert.Equal(t, OutcomeWarned, h.send(t, "alice", "quiet").Outcome)
	_, ok := h.record(t, "alice")
	assert.True(t, ok)

	assert.Equal(t, OutcomeKicked, h.send(t, "alice", "quiet").Outcome)
	_, ok = h.record(t, "alice")
	assert.False(t, ok)
}

func TestStorageErrorsAbortTheMessage(t *testing.T) {
	for _, op := range []string{"get", "upsert", "delete"} {
		t.Run(op, func(t *testing.T) {
			h := newHarness(t)
			if op == "delete" {
				// Reach the kick path so the failing delete is the one after the kick
				h.send(t, "alice", "quiet")
			}
			h.store.failOn = op

			d, err := h.engine.Handle(context.Background(), Message{Sender: User{Name: "alice"}, Text: "quiet"})
			require.Error(t, err)
			assert.True(t, warnings.IsStorageError(err))
			assert.Equal(t, OutcomeAborted, d.Outcome)

			if op != "delete" {
				n, k := h.actions.counts()
				assert.Zero(t, n, "no notice when the state could not be read or written")
				assert.Zero(t, k)
			}

			// The engine keeps working once the backend recovers
			h.store.failOn = ""
			_, err = h.engine.Handle(context.Background(), Message{Sender: User{Name: "bob"}, Text: "quiet"})
			assert.NoError(t, err)
		})
	}
}

func TestCompliantDeleteFailureIsReported(t *testing.T) {
	h := newHarness(t)
	h.store.failOn = "delete"

	d, err := h.engine.Handle(context.Background(), Message{Sender: User{Name: "alice"}, Text: "LOUD"})
	require.Error(t, err)
	assert.Equal(t, OutcomeAborted, d.Outcome)
}

func TestObserversSeeEveryDecision(t *testing.T) {
	h := newHarness(t, "boss")

	h.send(t, "boss", "quiet")
	h.send(t, "alice", "quiet")
	h.send(t, "alice", "LOUD")

	require.Len(t, h.decisions, 3)
	assert.Equal(t, OutcomeWhitelisted, h.decisions[0].Outcome)
	assert.Equal(t, OutcomeWarned, h.decisions[1].Outcome)
	assert.True(t, h.decisions[1].Enforced())
	assert.Equal(t, OutcomeCompliant, h.decisions[2].Outcome)
	assert.False(t, h.decisions[2].Enforced())
	assert.NotEqual(t, h.decisions[1].ID, h.decisions[2].ID)
}

func TestConcurrentOffensesFromSameUser(t *testing.T) {
	gate, err := daygate.New("")
	require.NoError(t, err)

	store := warnings.NewMemoryStore()
	actions := &fakeActions{}
	engine, err := NewEngine(store, actions, Options{
		Gate: gate,
		Now:  func() time.Time { return fridayNoon },
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	outcomes := make(chan Outcome, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := engine.Handle(context.Background(), Message{Sender: User{Name: "alice"}, Text: "quiet"})
			assert.NoError(t, err)
			outcomes <- d.Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	got := map[Outcome]int{}
	for o := range outcomes {
		got[o]++
	}
	assert.Equal(t, map[Outcome]int{OutcomeWarned: 1, OutcomeKicked: 1}, got)

	n, k := actions.counts()
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, k)
	assert.Zero(t, engine.locks.Len())
}

func TestStatusAndForgive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	st, err := h.engine.Status(ctx, "Alice")
	require.NoError(t, err)
	assert.False(t, st.Found)

	h.send(t, "alice", "quiet")
	h.clock.Advance(5 * time.Minute)

	st, err = h.engine.Status(ctx, " ALICE ")
	require.NoError(t, err)
	assert.True(t, st.Found)
	assert.True(t, st.Live)
	assert.Equal(t, "alice", st.Identity)
	assert.True(t, st.ExpiresAt.Equal(fridayNoon.Add(15*time.Minute)))

	h.clock.Advance(10 * time.Minute)
	st, err = h.engine.Status(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, st.Live)

	require.NoError(t, h.engine.Forgive(ctx, "Alice"))
	_, ok := h.record(t, "alice")
	assert.False(t, ok)

	// After forgiveness the next offense is a first offense again
	assert.Equal(t, OutcomeWarned, h.send(t, "alice", "quiet").Outcome)
}
