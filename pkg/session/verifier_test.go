package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/pkg/jwt"
	"github.com/dmitrymomot/mango/pkg/session"
)

const (
	testTTL   = time.Hour
	testGrace = 7 * 24 * time.Hour
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingStore struct {
	session.Store
	rewrites atomic.Int32
}

func (s *countingStore) Rewrite(ctx context.Context, oldToken, newToken string, now time.Time) error {
	s.rewrites.Add(1)
	return s.Store.Rewrite(ctx, oldToken, newToken, now)
}

type fixture struct {
	clock    *testClock
	signer   *jwt.Service
	memory   *session.MemoryStore
	store    *countingStore
	issuer   *session.Issuer
	verifier *session.Verifier
	user     session.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	signer, err := jwt.New([]byte("test-secret"), jwt.WithClock(clock.Now))
	require.NoError(t, err)

	user := session.Identity{ID: uuid.New(), Email: "dev@example.com", Role: "developer"}
	memory := session.NewMemoryStore(ownersOf(user))
	store := &countingStore{Store: memory}
	issuer := session.NewIssuer(signer, store, testTTL, session.WithIssuerClock(clock.Now))
	verifier := session.NewVerifier(signer, store, issuer, testGrace, session.WithVerifierClock(clock.Now))

	return &fixture{
		clock:    clock,
		signer:   signer,
		memory:   memory,
		store:    store,
		issuer:   issuer,
		verifier: verifier,
		user:     user,
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := session.WithAgent(context.Background(), "Mozilla/5.0")

	token, err := f.issuer.Issue(ctx, f.user, false)
	require.NoError(t, err)

	res, err := f.verifier.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.StateValid, res.State)
	assert.False(t, res.Refreshed)
	assert.Equal(t, token, res.Token)
	assert.Equal(t, f.user.ID, res.Identity.ID)
	assert.Equal(t, f.user.Email, res.Identity.Email)
	assert.Equal(t, "developer", res.Identity.Role)
	assert.Equal(t, "Mozilla/5.0", res.Session.Agent)
	assert.Zero(t, f.store.rewrites.Load())
}

func TestIssue_RefreshDoesNotInsert(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.issuer.Issue(context.Background(), f.user, true)
	require.NoError(t, err)
	assert.Equal(t, 0, f.memory.Len())

	_, err = f.issuer.Issue(context.Background(), f.user, false)
	require.NoError(t, err)
	_, err = f.issuer.Issue(context.Background(), f.user, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.memory.Len(), "each non-refresh issuance creates one row")
}

func TestVerify_ExpiredWithinGrace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		after time.Duration
	}{
		{name: "just expired", after: testTTL + time.Second},
		{name: "three days", after: testTTL + 3*24*time.Hour},
		{name: "exactly grace days", after: testTTL + testGrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			ctx := context.Background()

			token, err := f.issuer.Issue(ctx, f.user, false)
			require.NoError(t, err)

			f.clock.Advance(tt.after)

			res, err := f.verifier.Verify(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, session.StateExpiredWithinGrace, res.State)
			assert.True(t, res.Refreshed)
			assert.NotEqual(t, token, res.Token)
			assert.Equal(t, f.user.ID, res.Identity.ID)
			assert.Equal(t, f.user.Email, res.Identity.Email)
			assert.Equal(t, int32(1), f.store.rewrites.Load())
			assert.Equal(t, 1, f.memory.Len())

			_, err = f.memory.FindWithOwner(ctx, token)
			assert.ErrorIs(t, err, session.ErrSessionNotFound)

			again, err := f.verifier.Verify(ctx, res.Token)
			require.NoError(t, err)
			assert.Equal(t, session.StateValid, again.State)

			_, err = f.verifier.Verify(ctx, token)
			assert.ErrorIs(t, err, session.ErrTokenNoLongerValid)
		})
	}
}

func TestVerify_ExpiredBeyondGrace(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.issuer.Issue(ctx, f.user, false)
	require.NoError(t, err)

	f.clock.Advance(testTTL + testGrace + time.Millisecond)

	_, err = f.verifier.Verify(ctx, token)
	require.ErrorIs(t, err, session.ErrTokenExpired)
	assert.Zero(t, f.store.rewrites.Load())
	assert.Equal(t, 1, f.memory.Len(), "no mutation on rejection")
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	foreignSigner, err := jwt.New([]byte("someone-else"), jwt.WithClock(f.clock.Now))
	require.NoError(t, err)
	foreignIssuer := session.NewIssuer(foreignSigner, session.NewMemoryStore(nil), testTTL,
		session.WithIssuerClock(f.clock.Now))
	foreign, err := foreignIssuer.Issue(context.Background(), f.user, true)
	require.NoError(t, err)

	noUser, err := f.signer.Generate(&jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(f.clock.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	badID, err := f.signer.Generate(&session.Claims{
		User: &session.ClaimsUser{ID: "not-a-uuid", Email: "x@example.com"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(f.clock.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "garbage",
		"wrong secret":  foreign,
		"missing user":  noUser,
		"malformed id":  badID,
		"two segments":  "a.b",
		"bad signature": foreign[:len(foreign)-2] + "xx",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.verifier.Verify(context.Background(), token)
			require.ErrorIs(t, err, session.ErrMalformedToken)
		})
	}
	assert.Zero(t, f.store.rewrites.Load())
}

func TestVerify_Unauthenticated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.verifier.Verify(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
}

func TestVerify_RevokedTokenRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.issuer.Issue(ctx, f.user, false)
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteAllForOwner(ctx, f.user.ID))

	_, err = f.verifier.Verify(ctx, token)
	assert.ErrorIs(t, err, session.ErrTokenNoLongerValid)

	f.clock.Advance(testTTL + time.Minute)
	_, err = f.verifier.Verify(ctx, token)
	assert.ErrorIs(t, err, session.ErrTokenNoLongerValid, "revoked tokens cannot be refreshed")
	assert.Zero(t, f.store.rewrites.Load())
}

func TestVerify_ConcurrentRefreshHasOneWinner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.issuer.Issue(ctx, f.user, false)
	require.NoError(t, err)
	f.clock.Advance(testTTL + time.Hour)

	const racers = 8
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		winners atomic.Int32
		losers  atomic.Int32
		fresh   = make(chan string, racers)
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := f.verifier.Verify(ctx, token)
			switch {
			case err == nil:
				winners.Add(1)
				fresh <- res.Token
			case errors.Is(err, session.ErrTokenNoLongerValid):
				losers.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()
	close(fresh)

	assert.Equal(t, int32(1), winners.Load())
	assert.Equal(t, int32(racers-1), losers.Load())
	assert.Equal(t, 1, f.memory.Len())

	winner := <-fresh
	_, err = f.memory.FindWithOwner(ctx, winner)
	assert.NoError(t, err)
}

func TestVerify_RoleComesFromOwnerRow(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		role = "user"
	)
	clock := &testClock{now: time.Now().Truncate(time.Second)}
	signer, err := jwt.New([]byte("secret"), jwt.WithClock(clock.Now))
	require.NoError(t, err)

	id := uuid.New()
	store := session.NewMemoryStore(session.OwnerLookupFunc(func(_ context.Context, owner uuid.UUID) (session.Identity, error) {
		mu.Lock()
		defer mu.Unlock()
		return session.Identity{ID: owner, Email: "r@example.com", Role: role}, nil
	}))
	issuer := session.NewIssuer(signer, store, testTTL, session.WithIssuerClock(clock.Now))
	verifier := session.NewVerifier(signer, store, issuer, testGrace, session.WithVerifierClock(clock.Now))

	token, err := issuer.Issue(context.Background(), session.Identity{ID: id, Email: "r@example.com"}, false)
	require.NoError(t, err)

	res, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user", res.Identity.Role)

	mu.Lock()
	role = "cto"
	mu.Unlock()

	res, err = verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "cto", res.Identity.Role)
}
