package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vytor/flashrecall/internal/logger"
	"github.com/vytor/flashrecall/internal/models"
	"github.com/vytor/flashrecall/internal/repository"
)

// Key layout under prefix:
//
//	{prefix}:progress:{user}:{collection}:{card}  JSON CardProgress
//	{prefix}:due:{user}:{collection}              ZSET card -> next review (unix ms)
//	{prefix}:collections:{user}                   SET of collection IDs
//	{prefix}:users                                SET of user IDs
type progressRepository struct {
	rdb    goredis.UniversalClient
	prefix string
}

// Connect dials Redis and verifies the connection with PING.
func Connect(ctx context.Context, addr string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewProgressRepository stores progress records in Redis under prefix.
func NewProgressRepository(rdb goredis.UniversalClient, prefix string) repository.ProgressRepository {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = "flashrecall"
	}
	return &progressRepository{rdb: rdb, prefix: prefix}
}

func (r *progressRepository) Get(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_redis")
	log.Debug("getting progress: user_id=%s, collection_id=%s, card_id=%s", key.UserID, key.CollectionID, key.CardID)

	raw, err := r.rdb.Get(ctx, r.recordKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		log.Debug("progress not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	p, err := decode(raw)
	if err != nil {
		log.Error("failed to decode progress: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) Put(ctx context.Context, p models.CardProgress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_redis")
	log.Debug("upserting progress: card_id=%s, interval=%d, ease=%.2f", p.CardID, p.Interval, p.EaseFactor)

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	raw, err := json.Marshal(p)
	if err != nil {
		log.Error("failed to encode progress: %v", err)
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, r.recordKey(p.ProgressKey), raw, 0)
		pipe.ZAdd(ctx, r.dueKey(p.UserID, p.CollectionID), goredis.Z{
			Score:  score(p.NextReviewDate),
			Member: p.CardID,
		})
		pipe.SAdd(ctx, r.collectionsKey(p.UserID), p.CollectionID)
		pipe.SAdd(ctx, r.usersKey(), p.UserID)
		return nil
	})
	if err != nil {
		log.Error("failed to upsert progress: %v", err)
		return err
	}
	return nil
}

func (r *progressRepository) QueryByUser(ctx context.Context, userID, collectionID string) ([]models.CardProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_redis")
	log.Debug("querying progress: user_id=%s, collection_id=%s", userID, collectionID)

	out, err := r.collect(ctx, userID, collectionID, &goredis.ZRangeBy{Min: "-inf", Max: "+inf"})
	if err != nil {
		log.Error("failed to query progress: %v", err)
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CollectionID != out[j].CollectionID {
			return out[i].CollectionID < out[j].CollectionID
		}
		return out[i].CardID < out[j].CardID
	})
	return out, nil
}

func (r *progressRepository) QueryDue(ctx context.Context, userID, collectionID string, asOf time.Time) ([]models.CardProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_redis")
	log.Debug("querying due progress: user_id=%s, collection_id=%s, as_of=%s", userID, collectionID, asOf.Format(time.RFC3339))

	maxScore := strconv.FormatFloat(score(asOf), 'f', -1, 64)
	out, err := r.collect(ctx, userID, collectionID, &goredis.ZRangeBy{Min: "-inf", Max: maxScore})
	if err != nil {
		log.Error("failed to query due progress: %v", err)
		return nil, err
	}
	// The sorted set is millisecond-granular; re-check against asOf.
	due := out[:0]
	for _, p := range out {
		if p.IsDue(asOf) {
			due = append(due, p)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReviewDate.Equal(due[j].NextReviewDate) {
			return due[i].NextReviewDate.Before(due[j].NextReviewDate)
		}
		if due[i].CardID != due[j].CardID {
			return due[i].CardID < due[j].CardID
		}
		return due[i].CollectionID < due[j].CollectionID
	})
	log.Debug("found %d due cards", len(due))
	return due, nil
}

func (r *progressRepository) ListUsers(ctx context.Context) ([]string, error) {
	users, err := r.rdb.SMembers(ctx, r.usersKey()).Result()
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progress_redis").Error("failed to list users: %v", err)
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}

func (r *progressRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// collect loads every record of userID (optionally one collection) whose
// due score falls inside rng.
func (r *progressRepository) collect(ctx context.Context, userID, collectionID string, rng *goredis.ZRangeBy) ([]models.CardProgress, error) {
	collections := []string{collectionID}
	if collectionID == "" {
		var err error
		collections, err = r.rdb.SMembers(ctx, r.collectionsKey(userID)).Result()
		if err != nil {
			return nil, err
		}
	}

	var keys []string
	for _, c := range collections {
		cards, err := r.rdb.ZRangeByScore(ctx, r.dueKey(userID, c), rng).Result()
		if err != nil {
			return nil, err
		}
		for _, card := range cards {
			keys = append(keys, r.recordKey(models.ProgressKey{UserID: userID, CollectionID: c, CardID: card}))
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.CardProgress, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Index entry without a record; skip rather than fail the scan.
			continue
		}
		p, err := decode([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *progressRepository) recordKey(k models.ProgressKey) string {
	return r.prefix + ":progress:" + esc(k.UserID) + ":" + esc(k.CollectionID) + ":" + esc(k.CardID)
}

func (r *progressRepository) dueKey(userID, collectionID string) string {
	return r.prefix + ":due:" + esc(userID) + ":" + esc(collectionID)
}

func (r *progressRepository) collectionsKey(userID string) string {
	return r.prefix + ":collections:" + esc(userID)
}

func (r *progressRepository) usersKey() string {
	return r.prefix + ":users"
}

// esc keeps ':' inside IDs from colliding with the key separator.
func esc(id string) string {
	return url.QueryEscape(id)
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func decode(raw []byte) (models.CardProgress, error) {
	var p models.CardProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, err
	}
	p.NextReviewDate = p.NextReviewDate.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.LastReviewDate != nil {
		t := p.LastReviewDate.UTC()
		p.LastReviewDate = &t
	}
	return p, nil
}
