// db/redis.go
package db

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/clearledger/vigil/api/audit"
	logger "github.com/clearledger/vigil/api/logging"
	"github.com/clearledger/vigil/api/model"
)

var (
	RedisClient   *redis.Client
	encryptionKey []byte
)

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Client records carry PII; they are never cached in the clear.
	encryptionKey = []byte(viper.GetString("redis.encryptionKey"))
	if len(encryptionKey) != 32 {
		return fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func CacheClient(ctx context.Context, client *model.Client) error {
	clientJSON, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("failed to marshal client: %w", err)
	}

	encryptedClient, err := encrypt(clientJSON)
	if err != nil {
		return fmt.Errorf("failed to encrypt client: %w", err)
	}

	key := fmt.Sprintf("client:%s", client.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, base64.StdEncoding.EncodeToString(encryptedClient), defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache client: %w", err)
	}

	logger.Debug("Client cached successfully", zap.String("clientID", client.ID))
	return nil
}

func GetCachedClient(ctx context.Context, clientID string) (*model.Client, error) {
	key := fmt.Sprintf("client:%s", clientID)
	encryptedClientStr, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Client not found in cache", zap.String("clientID", clientID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get client from cache: %w", err)
	}

	encryptedClient, err := base64.StdEncoding.DecodeString(encryptedClientStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode client: %w", err)
	}

	clientJSON, err := decrypt(encryptedClient)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt client: %w", err)
	}

	var client model.Client
	err = json.Unmarshal(clientJSON, &client)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal client: %w", err)
	}

	logger.Debug("Client retrieved from cache", zap.String("clientID", clientID))
	return &client, nil
}

func DeleteCachedClient(ctx context.Context, clientID string) error {
	key := fmt.Sprintf("client:%s", clientID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete client from cache: %w", err)
	}
	logger.Debug("Client deleted from cache", zap.String("clientID", clientID))
	return nil
}

// Audit stats are cheap to recompute but requested often by dashboards; a
// short TTL keeps them fresh without hammering the chain store.
func CacheAuditStats(ctx context.Context, organizationID string, stats *audit.Stats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal audit stats: %w", err)
	}

	key := fmt.Sprintf("audit:stats:%s", organizationID)
	err = RedisClient.Set(ctx, key, statsJSON, time.Minute).Err()
	if err != nil {
		return fmt.Errorf("failed to cache audit stats: %w", err)
	}

	logger.Debug("Audit stats cached successfully", zap.String("organizationID", organizationID))
	return nil
}

func GetCachedAuditStats(ctx context.Context, organizationID string) (*audit.Stats, error) {
	key := fmt.Sprintf("audit:stats:%s", organizationID)
	statsJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get audit stats from cache: %w", err)
	}

	var stats audit.Stats
	err = json.Unmarshal([]byte(statsJSON), &stats)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit stats: %w", err)
	}

	return &stats, nil
}

func DeleteCachedAuditStats(ctx context.Context, organizationID string) error {
	key := fmt.Sprintf("audit:stats:%s", organizationID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete audit stats from cache: %w", err)
	}
	return nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}

func LockResource(ctx context.Context, resourceName string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:%s", resourceName)
	locked, err := RedisClient.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	logger.Debug("Lock acquisition attempt",
		zap.String("resource", resourceName),
		zap.Bool("locked", locked))
	return locked, nil
}

func UnlockResource(ctx context.Context, resourceName string) error {
	key := fmt.Sprintf("lock:%s", resourceName)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	logger.Debug("Lock released", zap.String("resource", resourceName))
	return nil
}
