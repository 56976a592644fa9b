package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'owner', ARGV[1], 'agent', ARGV[2], 'issued_at', ARGV[3], 'last_refreshed_at', ARGV[4])
if tonumber(ARGV[5]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[5])
end
redis.call('SADD', KEYS[2], ARGV[6])
return 1
`)

// rewriteScript renames the row keyed by the old token and moves it inside
// the owner set. Returns 0 when the old token is gone or changed owner, -1
// when the new token is taken.
var rewriteScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'owner') ~= ARGV[4] then
	return 0
end
if redis.call('EXISTS', KEYS[2]) == 1 then
	return -1
end
redis.call('RENAME', KEYS[1], KEYS[2])
redis.call('HSET', KEYS[2], 'last_refreshed_at', ARGV[3])
if tonumber(ARGV[5]) > 0 then
	redis.call('PEXPIRE', KEYS[2], ARGV[5])
end
redis.call('SREM', KEYS[3], ARGV[1])
redis.call('SADD', KEYS[3], ARGV[2])
return 1
`)

// maxRevokeAttempts bounds optimistic retries of DeleteAllForOwner while
// refreshes keep touching the owner set.
const maxRevokeAttempts = 16

// RedisStore implements Store on Redis hashes, one hash per token plus a set
// of tokens per owner. Owners are resolved through an OwnerLookup.
//
// Every key carries the prefix as a hash tag, so all keys of one store share
// a cluster slot and multi-key scripts and transactions work on cluster
// clients.
type RedisStore struct {
	client redis.UniversalClient
	owners OwnerLookup
	prefix string
	ttl    time.Duration
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key namespace.
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRedisKeyTTL expires rows that were neither refreshed nor revoked.
// Use the token lifetime plus the refresh grace window.
func WithRedisKeyTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// NewRedisStore creates a session store backed by Redis
func NewRedisStore(client redis.UniversalClient, owners OwnerLookup, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		owners: owners,
		prefix: "mango:session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (r *RedisStore) slot() string {
	return "{" + strings.TrimSuffix(r.prefix, ":") + "}:"
}

func (r *RedisStore) tokenKey(token string) string { return r.slot() + "token:" + token }
func (r *RedisStore) ownerKey(owner string) string { return r.slot() + "owner:" + owner }

// Insert stores a new session row
func (r *RedisStore) Insert(ctx context.Context, s *Session) error {
	if err := s.validate(); err != nil {
		return err
	}

	res, err := insertScript.Run(ctx, r.client,
		[]string{r.tokenKey(s.Token), r.ownerKey(s.OwnerID.String())},
		s.OwnerID.String(), s.Agent, formatTime(s.IssuedAt), formatTime(s.LastRefreshedAt),
		r.ttl.Milliseconds(), s.Token,
	).Int()
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if res == 0 {
		return ErrDuplicateToken
	}
	return nil
}

// FindWithOwner returns the row for token joined with its owner
func (r *RedisStore) FindWithOwner(ctx context.Context, token string) (*Session, error) {
	fields, err := r.client.HGetAll(ctx, r.tokenKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	s, err := decodeSession(token, fields)
	if err != nil {
		return nil, err
	}

	owner := Identity{ID: s.OwnerID}
	if r.owners != nil {
		owner, err = r.owners.LookupOwner(ctx, s.OwnerID)
		if err != nil {
			if errors.Is(err, ErrOwnerNotFound) {
				_ = r.DeleteAllForOwner(ctx, s.OwnerID)
				return nil, ErrSessionNotFound
			}
			return nil, err
		}
	}

	s.Owner = &owner
	return s, nil
}

// Rewrite replaces oldToken with newToken inside a single Lua script. The
// owner is read first so every touched key is declared to the script.
func (r *RedisStore) Rewrite(ctx context.Context, oldToken, newToken string, now time.Time) error {
	if newToken == "" {
		return ErrInvalidSession
	}

	owner, err := r.client.HGet(ctx, r.tokenKey(oldToken), "owner").Result()
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("rewrite session: %w", err)
	}

	res, err := rewriteScript.Run(ctx, r.client,
		[]string{r.tokenKey(oldToken), r.tokenKey(newToken), r.ownerKey(owner)},
		oldToken, newToken, formatTime(now), owner, r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("rewrite session: %w", err)
	}

	switch res {
	case 0:
		return ErrSessionNotFound
	case -1:
		return ErrDuplicateToken
	}
	return nil
}

// Delete removes a session by token
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	owner, err := r.client.HGet(ctx, r.tokenKey(token), "owner").Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.tokenKey(token))
		pipe.SRem(ctx, r.ownerKey(owner), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteAllForOwner removes all sessions for a specific user. The owner set
// is watched, so a refresh or insert landing between the read and the delete
// aborts the transaction and the revocation starts over.
func (r *RedisStore) DeleteAllForOwner(ctx context.Context, ownerID uuid.UUID) error {
	key := r.ownerKey(ownerID.String())

	revoke := func(tx *redis.Tx) error {
		tokens, err := tx.SMembers(ctx, key).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, token := range tokens {
				pipe.Del(ctx, r.tokenKey(token))
			}
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}

	for range maxRevokeAttempts {
		err := r.client.Watch(ctx, revoke, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("delete owner sessions: %w", err)
		}
		return nil
	}
	return fmt.Errorf("delete owner sessions: %w", redis.TxFailedErr)
}

// ListByOwner returns the user's rows, most recently refreshed first.
// Tokens whose hash already expired are pruned from the owner set.
func (r *RedisStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Session, error) {
	tokens, err := r.client.SMembers(ctx, r.ownerKey(ownerID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("list owner sessions: %w", err)
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(tokens))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, token := range tokens {
			cmds[i] = pipe.HGetAll(ctx, r.tokenKey(token))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list owner sessions: %w", err)
	}

	out := make([]Session, 0, len(tokens))
	var stale []any
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			stale = append(stale, tokens[i])
			continue
		}
		s, err := decodeSession(tokens[i], fields)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if len(stale) > 0 {
		_ = r.client.SRem(ctx, r.ownerKey(ownerID.String()), stale...).Err()
	}

	slices.SortFunc(out, func(a, b Session) int {
		return cmp.Compare(b.LastRefreshedAt.UnixNano(), a.LastRefreshedAt.UnixNano())
	})
	return out, nil
}

func decodeSession(token string, fields map[string]string) (*Session, error) {
	owner, err := uuid.Parse(fields["owner"])
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	issued, err := parseTime(fields["issued_at"])
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	refreshed, err := parseTime(fields["last_refreshed_at"])
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}

	return &Session{
		Token:           token,
		OwnerID:         owner,
		Agent:           fields["agent"],
		IssuedAt:        issued,
		LastRefreshedAt: refreshed,
	}, nil
}

func formatTime(t time.Time) string {
	return strconv.FormatInt(t.UTC().UnixNano(), 10)
}

func parseTime(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}
