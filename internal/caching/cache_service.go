package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"authhub/internal/models"

	"github.com/redis/go-redis/v9"
)

// CacheService fronts redis for the read-mostly tenant lookups plus a few
// generic string operations. A miss is (nil, nil) / ("", nil), never an
// error.
type CacheService interface {
	GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error)
	SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error
	DeleteTenant(ctx context.Context, tenantID string) error

	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("authhub: redis ping failed on initialization: %v (address: %s)", err, addr)
	}

	return &redisCacheService{client: client}
}

func tenantKey(tenantID string) string {
	return fmt.Sprintf("tenant:%s", tenantID)
}

func (s *redisCacheService) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	data, err := s.client.Get(ctx, tenantKey(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tenant := &models.Tenant{}
	if err := json.Unmarshal(data, tenant); err != nil {
		return nil, fmt.Errorf("unmarshal cached tenant: %w", err)
	}
	return tenant, nil
}

func (s *redisCacheService) SetTenant(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	data, err := json.Marshal(tenant)
	if err != nil {
		return fmt.Errorf("marshal tenant: %w", err)
	}
	return s.client.Set(ctx, tenantKey(tenant.ID), data, ttl).Err()
}

func (s *redisCacheService) DeleteTenant(ctx context.Context, tenantID string) error {
	return s.client.Del(ctx, tenantKey(tenantID)).Err()
}

func (s *redisCacheService) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

func (s *redisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
