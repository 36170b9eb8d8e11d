package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"anxiety-service/internal/models"
)

const (
	recentListKey  = "predictions:recent"
	recentListMax  = 999
	predictionTTL  = time.Hour
	predictionKeyF = "prediction:%s"
)

// RedisClient keeps a short-lived list of recent predictions so IDE-side
// tooling can inspect them. The analysis pipeline never reads this data
// back; it is an observability surface only.
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisClient(addr string) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		PoolSize:     100,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

func (r *RedisClient) StorePrediction(p *models.PredictionResult) error {
	key := fmt.Sprintf(predictionKeyF, p.ID)

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	err = r.client.Set(r.ctx, key, data, predictionTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to store prediction in Redis: %w", err)
	}

	err = r.client.LPush(r.ctx, recentListKey, key).Err()
	if err != nil {
		return fmt.Errorf("failed to update recent predictions list: %w", err)
	}

	r.client.LTrim(r.ctx, recentListKey, 0, recentListMax)

	return nil
}

func (r *RedisClient) GetRecentPredictions(count int64) ([]models.PredictionResult, error) {
	keys, err := r.client.LRange(r.ctx, recentListKey, 0, count-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get recent prediction keys: %w", err)
	}

	var predictions []models.PredictionResult
	for _, key := range keys {
		data, err := r.client.Get(r.ctx, key).Result()
		if err != nil {
			continue // expired entries stay listed until trimmed
		}

		var p models.PredictionResult
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			continue
		}

		predictions = append(predictions, p)
	}

	return predictions, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
