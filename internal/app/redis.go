package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"aurejet/internal/config"
)

// Datastore collections reported to New Relic, keyed by Redis key prefix.
var redisCollections = []struct {
	prefix     string
	collection string
}{
	{prefix: "cache:flight:", collection: "flight_cache"},
	{prefix: "airports:locations", collection: "airport_geo"},
	{prefix: "lock:charge:", collection: "charge_lock"},
	{prefix: "idempotency:", collection: "idempotency_replay"},
}

// NewRedisClient connects the flight cache, airport geo index, charge locks
// and idempotency replay store. With a New Relic app each command is traced
// as a datastore segment named after the store it touches.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, nrApp *newrelic.Application) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if nrApp != nil {
		client.AddHook(&nrRedisHook{})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// redisCollection maps a command to the store its key belongs to.
func redisCollection(cmd redis.Cmder) string {
	args := cmd.Args()
	keyPos := 1
	switch strings.ToLower(cmd.Name()) {
	case "eval", "evalsha", "eval_ro", "evalsha_ro":
		// EVALSHA sha numkeys key...
		keyPos = 3
	}
	if len(args) <= keyPos {
		return "redis"
	}

	key, ok := args[keyPos].(string)
	if !ok {
		return "redis"
	}
	for _, c := range redisCollections {
		if strings.HasPrefix(key, c.prefix) {
			return c.collection
		}
	}
	return "redis"
}

// nrRedisHook reports Redis commands on the request's New Relic transaction.
type nrRedisHook struct{}

func (h *nrRedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *nrRedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil {
			segment := newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  cmd.Name(),
				Collection: redisCollection(cmd),
			}
			defer segment.End()
		}
		return next(ctx, cmd)
	}
}

func (h *nrRedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if txn := newrelic.FromContext(ctx); txn != nil && len(cmds) > 0 {
			segment := newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  "pipeline",
				Collection: redisCollection(cmds[0]),
			}
			defer segment.End()
		}
		return next(ctx, cmds)
	}
}
