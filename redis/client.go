package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type DB int
type ReleaseLock func() error

// ErrNotFound is returned when a document key does not exist.
var ErrNotFound = redis.Nil

type Client struct {
	client         redis.UniversalClient
	locker         *redislock.Client
	lockExpiration time.Duration
	lockRetries    int
}

type Config struct {
	LockExpirationSeconds   int     `envconfig:"HMM_REDIS_LOCK_EXPIRATION" default:"3"`
	LockRetries             int     `envconfig:"HMM_REDIS_LOCK_RETRIES" default:"20"`
	Host                    string  `envconfig:"HMM_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"HMM_REDIS_PORT" default:"6379"`
	HASentinelPort          string  `envconfig:"HMM_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"HMM_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"HMM_REDIS_AUTH_PASSWORD" default:""`
	HAMode                  bool    `envconfig:"HMM_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"HMM_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (Client, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Client{}, err
	}
	var client redis.UniversalClient
	if cfg.HAMode {
		client = createFailoverClient(cfg, db)
	} else {
		client = createClient(cfg, db)
	}
	return NewFromUniversal(client, time.Duration(cfg.LockExpirationSeconds)*time.Second, cfg.LockRetries), nil
}

// NewFromUniversal wraps an existing go-redis client.
func NewFromUniversal(client redis.UniversalClient, lockExpiration time.Duration, lockRetries int) Client {
	return Client{
		client:         client,
		locker:         redislock.New(client),
		lockExpiration: lockExpiration,
		lockRetries:    lockRetries,
	}
}

func createFailoverClient(cfg Config, db DB) *redis.ClusterClient {
	timeout := time.Duration(cfg.HASentinelSocketTimeout * float32(time.Second))
	return redis.NewFailoverClusterClient(&redis.FailoverOptions{
		SentinelAddrs: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
		Password:      cfg.Password,
	})
}

func createClient(cfg Config, db DB) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		MaxRetries: 6,
		DB:         int(db),
		Password:   cfg.Password,
	})
}

// GetDocument unmarshals the JSON stored at redisKey into doc.
func (client *Client) GetDocument(ctx context.Context, redisKey string, doc interface{}) error {
	b, err := client.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, doc); err != nil {
		return fmt.Errorf("decode document %s: %w", redisKey, err)
	}
	return nil
}

func (client *Client) SaveDocument(ctx context.Context, redisKey string, doc interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return client.client.Set(ctx, redisKey, b, 0).Err()
}

// UpdateDocument reads the document at redisKey into doc, applies update and
// writes it back while holding the key's lock.
func (client *Client) UpdateDocument(ctx context.Context, redisKey string, doc interface{}, update func()) (err error) {
	releaseLock, err := client.Lock(ctx, redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()
	if err = client.GetDocument(ctx, redisKey, doc); err != nil {
		return err
	}
	update()
	return client.SaveDocument(ctx, redisKey, doc)
}

func (client *Client) Lock(ctx context.Context, redisKey string) (ReleaseLock, error) {
	strategy := redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), client.lockRetries)
	lock, err := client.locker.Obtain(ctx, lockKey(redisKey), client.lockExpiration, &redislock.Options{RetryStrategy: strategy})
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", redisKey, err)
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (client *Client) Close() error {
	return client.client.Close()
}

func lockKey(redisKey string) string {
	return fmt.Sprintf("lock:%s", redisKey)
}
