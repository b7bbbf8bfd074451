package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sangkips/bartab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bartab-api/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a postgres-backed idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key, endpoint string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND endpoint = ?", key, endpoint).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.db.WithContext(ctx).Create(ikey).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}

type memoryIdempotencyRepository struct {
	mu   sync.Mutex
	keys map[string]entity.IdempotencyKey
	now  func() time.Time
}

// NewMemoryIdempotencyRepository keeps idempotency keys in process, used when no database is configured
func NewMemoryIdempotencyRepository() domainRepo.IdempotencyRepository {
	return &memoryIdempotencyRepository{
		keys: make(map[string]entity.IdempotencyKey),
		now:  time.Now,
	}
}

func idempotencyKey(key, endpoint string) string {
	return endpoint + "\x00" + key
}

func (r *memoryIdempotencyRepository) GetByKey(ctx context.Context, key, endpoint string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ikey, ok := r.keys[idempotencyKey(key, endpoint)]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *memoryIdempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := idempotencyKey(ikey.Key, ikey.Endpoint)
	if _, exists := r.keys[k]; exists {
		return gorm.ErrDuplicatedKey
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = r.now()
	}
	r.keys[k] = *ikey
	return nil
}

func (r *memoryIdempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var removed int64
	for k, ikey := range r.keys {
		if ikey.ExpiresAt.Before(now) {
			delete(r.keys, k)
			removed++
		}
	}
	return removed, nil
}
