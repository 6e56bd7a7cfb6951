// Package cache puts a Redis read-through layer in front of a customer store.
package cache

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "customer:"

// CustomerRepository caches single-record lookups. Customers are never
// updated once stored, so entries only expire by TTL. Range queries and
// counts go straight to the wrapped store.
type CustomerRepository struct {
	customer.Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

type cachedCustomer struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DateOfBirth string    `json:"dateOfBirth"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewCustomerRepository(next customer.Repository, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CustomerRepository {
	if next == nil {
		panic("wrapped customer repository cannot be nil")
	}
	return &CustomerRepository{
		Repository: next,
		rdb:        rdb,
		ttl:        ttl,
		logger:     logger.With("component", "CustomerCache"),
	}
}

func cacheKey(customerID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, customerID)
}

func encodeCustomer(c *customer.Customer) (string, error) {
	data, err := json.Marshal(cachedCustomer{
		ID:          c.CustomerID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DateOfBirth: c.DateOfBirth.Format(customer.DateLayout),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeCustomer(raw string) (*customer.Customer, error) {
	var cc cachedCustomer
	if err := json.Unmarshal([]byte(raw), &cc); err != nil {
		return nil, err
	}
	dob, err := time.Parse(customer.DateLayout, cc.DateOfBirth)
	if err != nil {
		return nil, err
	}
	return &customer.Customer{
		CustomerID:  cc.ID,
		FirstName:   cc.FirstName,
		LastName:    cc.LastName,
		DateOfBirth: dob,
		CreatedAt:   cc.CreatedAt,
		UpdatedAt:   cc.UpdatedAt,
	}, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, cust *customer.Customer) error {
	if err := r.Repository.Insert(ctx, cust); err != nil {
		return err
	}
	r.store(ctx, cust)
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	log := r.logger.With(slog.Int64("customerID", customerID))

	raw, err := r.rdb.Get(ctx, cacheKey(customerID)).Result()
	switch {
	case err == nil:
		cust, decodeErr := decodeCustomer(raw)
		if decodeErr == nil {
			monitoring.RecordCacheLookup("hit")
			return cust, nil
		}
		log.WarnContext(ctx, "Discarding undecodable cache entry", slog.Any("error", decodeErr))
		monitoring.RecordCacheLookup("error")
	case errors.Is(err, redis.Nil):
		monitoring.RecordCacheLookup("miss")
	default:
		log.WarnContext(ctx, "Cache lookup failed, falling back to store", slog.Any("error", err))
		monitoring.RecordCacheLookup("error")
	}

	cust, err := r.Repository.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, cust)
	return cust, nil
}

// store is best effort; a failed write only costs a later miss.
func (r *CustomerRepository) store(ctx context.Context, cust *customer.Customer) {
	raw, err := encodeCustomer(cust)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to encode customer for cache", slog.Any("error", err))
		return
	}
	if err := r.rdb.Set(ctx, cacheKey(cust.CustomerID), raw, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "Failed to write customer to cache", slog.Int64("customerID", cust.CustomerID), slog.Any("error", err))
	}
}
