// Package memory holds a process-local customer store. It backs the
// "memory" database driver and the paginator tests.
package memory

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"sort"
	"sync"
	"time"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers []customer.Customer // ascending by CustomerID
	lastID    int64
	now       func() time.Time
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{now: time.Now}
}

func (r *CustomerRepository) Insert(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	now := r.now().UTC()
	cust.CustomerID = r.lastID
	cust.CreatedAt = now
	cust.UpdatedAt = now
	r.customers = append(r.customers, *cust)
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.firstIndexAtOrAbove(customerID)
	if i == len(r.customers) || r.customers[i].CustomerID != customerID {
		return nil, apperrors.ErrNotFound
	}
	found := r.customers[i]
	return &found, nil
}

func (r *CustomerRepository) FindAscendingAfter(ctx context.Context, afterID int64, limit int) ([]*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	start := r.firstIndexAtOrAbove(afterID)
	if start < len(r.customers) && r.customers[start].CustomerID == afterID {
		start++
	}
	end := start + min(len(r.customers)-start, max(limit, 0))
	return r.copyRange(start, end, false), nil
}

func (r *CustomerRepository) FindAscendingAll(ctx context.Context, limit int) ([]*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	end := min(len(r.customers), max(limit, 0))
	return r.copyRange(0, end, false), nil
}

func (r *CustomerRepository) FindDescendingBefore(ctx context.Context, beforeID int64, limit int) ([]*customer.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	end := r.firstIndexAtOrAbove(beforeID)
	start := max(0, end-max(limit, 0))
	return r.copyRange(start, end, true), nil
}

func (r *CustomerRepository) ExistsAtOrAbove(ctx context.Context, customerID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.firstIndexAtOrAbove(customerID) < len(r.customers), nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.customers)), nil
}

// firstIndexAtOrAbove must be called with the lock held.
func (r *CustomerRepository) firstIndexAtOrAbove(customerID int64) int {
	return sort.Search(len(r.customers), func(i int) bool {
		return r.customers[i].CustomerID >= customerID
	})
}

func (r *CustomerRepository) copyRange(start, end int, descending bool) []*customer.Customer {
	result := make([]*customer.Customer, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		idx := i
		if descending {
			idx = end - 1 - (i - start)
		}
		c := r.customers[idx]
		result = append(result, &c)
	}
	return result
}
