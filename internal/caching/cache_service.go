package caching

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"rentalhub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "rentalhub:"

	// generationTTL only has to outlive an in-flight read
	generationTTL = 24 * time.Hour
)

var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type CacheService interface {
	// Rental caching. Every DeleteRental bumps the rental's generation;
	// SetRental stores only if the generation still matches, so a read that
	// raced a write cannot repopulate the cache with the old version.
	GetRental(ctx context.Context, id string) (*models.RentalOrder, error)
	RentalGeneration(ctx context.Context, id string) (int64, error)
	SetRental(ctx context.Context, order *models.RentalOrder, generation int64, ttl time.Duration) (bool, error)
	DeleteRental(ctx context.Context, id string) error

	// Product caching
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// Report caching
	GetRentalReport(ctx context.Context) (*models.RentalReport, error)
	SetRentalReport(ctx context.Context, report *models.RentalReport, ttl time.Duration) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient accepts either host:port or a redis:// / rediss:// address
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsedAddr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}
	return redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func rentalKey(id string) string { return keyPrefix + "rental:" + id }
func rentalGenerationKey(id string) string { return keyPrefix + "rental-gen:" + id }
func productKey(id uuid.UUID) string { return keyPrefix + "product:" + id.String() }
func reportKey() string { return keyPrefix + "report:rentals" }

// getJSON returns false without error on a cache miss
func (r *redisCacheService) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetRental(ctx context.Context, id string) (*models.RentalOrder, error) {
	var order models.RentalOrder
	found, err := r.getJSON(ctx, rentalKey(id), &order)
	if err != nil || !found {
		return nil, err
	}
	return &order, nil
}

// RentalGeneration returns 0 for a rental that was never evicted
func (r *redisCacheService) RentalGeneration(ctx context.Context, id string) (int64, error) {
	gen, err := r.client.Get(ctx, rentalGenerationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *redisCacheService) SetRental(ctx context.Context, order *models.RentalOrder, generation int64, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return false, err
	}
	keys := []string{rentalKey(order.ID), rentalGenerationKey(order.ID)}
	stored, err := setIfGeneration.Run(ctx, r.client, keys, strconv.FormatInt(generation, 10), data, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (r *redisCacheService) DeleteRental(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, rentalKey(id))
		pipe.Incr(ctx, rentalGenerationKey(id))
		pipe.Expire(ctx, rentalGenerationKey(id), generationTTL)
		return nil
	})
	return err
}

func (r *redisCacheService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	found, err := r.getJSON(ctx, productKey(id), &product)
	if err != nil || !found {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return r.setJSON(ctx, productKey(product.ID), product, ttl)
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, productKey(id)).Err()
}

func (r *redisCacheService) GetRentalReport(ctx context.Context) (*models.RentalReport, error) {
	var report models.RentalReport
	found, err := r.getJSON(ctx, reportKey(), &report)
	if err != nil || !found {
		return nil, err
	}
	return &report, nil
}

func (r *redisCacheService) SetRentalReport(ctx context.Context, report *models.RentalReport, ttl time.Duration) error {
	return r.setJSON(ctx, reportKey(), report, ttl)
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
