package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/k1s0-platform/system-server-go-configsync/internal/infra/config"
)

// putIfNewer は格納済みバージョンが新しい場合に上書きを拒否するスクリプト。
// キャッシュミス時の再取得とコミット後の更新が競合しても、読み手が
// コミット済みより古い値を観測しないようにする。
var putIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, decoded = pcall(cjson.decode, cur)
  if ok and decoded.version and tonumber(decoded.version) >= tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// RedisCache は ConfigCache の Redis 実装。
type RedisCache struct {
	client  *redis.Client
	prefix  string
	channel string
}

// NewRedisCache は新しい RedisCache を作成する。
func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{
		client:  client,
		prefix:  cfg.KeyPrefix,
		channel: cfg.BroadcastChannel(),
	}
}

func (c *RedisCache) cacheKey(section, key string) string {
	return c.prefix + section + ":" + key
}

// Get はキャッシュエントリを取得する。ミス時は (nil, nil) を返す。
func (c *RedisCache) Get(ctx context.Context, section, key string) (*Entry, error) {
	data, err := c.client.Get(ctx, c.cacheKey(section, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// 壊れたエントリはミス扱いにして読み直させる
		return nil, nil
	}
	return &entry, nil
}

// Put はエントリを格納する。より新しいバージョンが既に格納されている場合は何もしない。
func (c *RedisCache) Put(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	key := c.cacheKey(entry.Section, entry.Key)
	if err := putIfNewer.Run(ctx, c.client, []string{key}, data, entry.Version).Err(); err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

// Invalidate は単一エントリを無効化する。
func (c *RedisCache) Invalidate(ctx context.Context, section, key string) error {
	if err := c.client.Del(ctx, c.cacheKey(section, key)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// InvalidateSection はセクション内の全エントリを無効化する。
func (c *RedisCache) InvalidateSection(ctx context.Context, section string) error {
	pattern := c.prefix + section + ":*"
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache section: %w", err)
	}
	return nil
}

// Broadcast はブロードキャストチャネルへメッセージを配信する。
func (c *RedisCache) Broadcast(ctx context.Context, payload []byte) error {
	if err := c.client.Publish(ctx, c.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to broadcast message: %w", err)
	}
	return nil
}

// Subscribe はブロードキャストチャネルを購読する。
func (c *RedisCache) Subscribe(ctx context.Context) (<-chan []byte, func()) {
	pubsub := c.client.Subscribe(ctx, c.channel)
	out := make(chan []byte)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = pubsub.Close() }
}

// Healthy は Redis への接続を確認する。
func (c *RedisCache) Healthy(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close は Redis クライアントを閉じる。
func (c *RedisCache) Close() error {
	return c.client.Close()
}
