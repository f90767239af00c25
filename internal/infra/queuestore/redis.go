package queuestore

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"concert-reservation/internal/domain/queue"
	"concert-reservation/internal/infra"
	"concert-reservation/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Key layout (all keys share the {queue} hash tag so scripts stay on one slot):
//
//	<prefix>:{queue}:seq              admission counter, used as zset score
//	<prefix>:{queue}:token:<id>       hash: account, status, deadline, created, seq
//	<prefix>:{queue}:status:<STATUS>  zset of token ids scored by seq
//	<prefix>:{queue}:account:<uuid>   id of the account's live token
//	<prefix>:{queue}:latest:<uuid>    id of the account's newest token until it is purged
const (
	fieldAccount  = "account"
	fieldStatus   = "status"
	fieldDeadline = "deadline"
	fieldCreated  = "created"
)

var addScript = redis.NewScript(`
if redis.call('SET', KEYS[1], ARGV[1], 'NX') == false then
	return 0
end
local seq = redis.call('INCR', KEYS[4])
redis.call('HSET', KEYS[2], 'account', ARGV[2], 'status', ARGV[3], 'deadline', ARGV[4], 'created', ARGV[5], 'seq', seq)
redis.call('ZADD', KEYS[3], seq, ARGV[1])
redis.call('SET', KEYS[5], ARGV[1])
return 1
`)

// KEYS: token hash, from zset, to zset, account key
// ARGV: token id, from, to, deadline
var casScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'status')
if cur ~= ARGV[2] then
	return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[3], 'deadline', ARGV[4])
if ARGV[2] ~= ARGV[3] then
	local seq = redis.call('HGET', KEYS[1], 'seq')
	redis.call('ZREM', KEYS[2], ARGV[1])
	redis.call('ZADD', KEYS[3], seq, ARGV[1])
end
if ARGV[3] == 'EXPIRED' and redis.call('GET', KEYS[4]) == ARGV[1] then
	redis.call('DEL', KEYS[4])
end
return 1
`)

// KEYS: token hash, account key, latest key; ARGV: token id, status zset prefix
var removeScript = redis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if not status then
	return 0
end
redis.call('ZREM', ARGV[2] .. status, ARGV[1])
redis.call('DEL', KEYS[1])
if redis.call('GET', KEYS[2]) == ARGV[1] then
	redis.call('DEL', KEYS[2])
end
if redis.call('GET', KEYS[3]) == ARGV[1] then
	redis.call('DEL', KEYS[3])
end
return 1
`)

type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	logger *slog.Logger
}

type RedisOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(s *RedisStore) { s.logger = logger }
}

func NewRedisStore(rdb redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "concert",
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) base() string              { return s.prefix + ":{queue}" }
func (s *RedisStore) seqKey() string            { return s.base() + ":seq" }
func (s *RedisStore) tokenKey(id string) string { return s.base() + ":token:" + id }
func (s *RedisStore) statusPrefix() string      { return s.base() + ":status:" }
func (s *RedisStore) statusKey(st queue.Status) string {
	return s.statusPrefix() + st.String()
}
func (s *RedisStore) accountKey(id uuid.UUID) string { return s.base() + ":account:" + id.String() }
func (s *RedisStore) latestKey(id uuid.UUID) string  { return s.base() + ":latest:" + id.String() }

func (s *RedisStore) Add(ctx context.Context, token *queue.Token) error {
	added, err := addScript.Run(ctx, s.rdb,
		[]string{
			s.accountKey(token.AccountID()), s.tokenKey(token.ID()), s.statusKey(token.Status()),
			s.seqKey(), s.latestKey(token.AccountID()),
		},
		token.ID(), token.AccountID().String(), token.Status().String(),
		encodeTime(token.Deadline()), encodeTime(token.CreatedAt()),
	).Int()
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to add token", err)
	}
	if added == 0 {
		return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "account already holds a live token", nil)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*queue.Token, error) {
	fields, err := s.rdb.HGetAll(ctx, s.tokenKey(id)).Result()
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to load token", err)
	}
	if len(fields) == 0 {
		return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "token not found", nil)
	}
	return decodeToken(id, fields)
}

func (s *RedisStore) FindByAccount(ctx context.Context, accountID uuid.UUID) (*queue.Token, error) {
	id, err := s.rdb.Get(ctx, s.latestKey(accountID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "no token for account", nil)
	}
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to read account index", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) Members(ctx context.Context, status queue.Status, limit int) ([]*queue.Token, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.rdb.ZRange(ctx, s.statusKey(status), 0, stop).Result()
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to list tokens", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.tokenKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to load tokens", err)
	}

	out := make([]*queue.Token, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		// removed between ZRANGE and HGETALL
		if len(fields) == 0 {
			continue
		}
		token, err := decodeToken(ids[i], fields)
		if err != nil {
			s.logger.Warn("skipping undecodable token", "token_id", ids[i], "error", err.Error())
			continue
		}
		out = append(out, token)
	}
	return out, nil
}

func (s *RedisStore) Count(ctx context.Context, status queue.Status) (int, error) {
	n, err := s.rdb.ZCard(ctx, s.statusKey(status)).Result()
	if err != nil {
		return 0, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to count tokens", err)
	}
	return int(n), nil
}

func (s *RedisStore) CompareAndSet(ctx context.Context, tr queue.Transition) (bool, error) {
	// The account key is only known from the hash, so read it first; the script
	// re-checks that the index still points at this token before deleting it.
	accountRaw, err := s.rdb.HGet(ctx, s.tokenKey(tr.TokenID), fieldAccount).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to read token", err)
	}
	accountID, err := uuid.Parse(accountRaw)
	if err != nil {
		return false, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "corrupt token account", err)
	}

	applied, err := casScript.Run(ctx, s.rdb,
		[]string{s.tokenKey(tr.TokenID), s.statusKey(tr.From), s.statusKey(tr.To), s.accountKey(accountID)},
		tr.TokenID, tr.From.String(), tr.To.String(), encodeTime(tr.Deadline),
	).Int()
	if err != nil {
		return false, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to transition token", err)
	}
	return applied == 1, nil
}

func (s *RedisStore) Remove(ctx context.Context, id string) error {
	accountRaw, err := s.rdb.HGet(ctx, s.tokenKey(id), fieldAccount).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to read token", err)
	}

	if err := removeScript.Run(ctx, s.rdb,
		[]string{s.tokenKey(id), s.base() + ":account:" + accountRaw, s.base() + ":latest:" + accountRaw},
		id, s.statusPrefix(),
	).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to remove token", err)
	}
	return nil
}

func encodeTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func decodeTime(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	if ms == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms).UTC(), nil
}

func decodeToken(id string, fields map[string]string) (*queue.Token, error) {
	accountID, err := uuid.Parse(fields[fieldAccount])
	if err != nil {
		return nil, err
	}
	status := queue.Status(fields[fieldStatus])
	if !status.IsValid() {
		return nil, errs.Newf("unknown token status %q", status)
	}
	deadline, err := decodeTime(fields[fieldDeadline])
	if err != nil {
		return nil, err
	}
	createdAt, err := decodeTime(fields[fieldCreated])
	if err != nil {
		return nil, err
	}
	return queue.ReconstructToken(id, accountID, status, deadline, createdAt), nil
}
