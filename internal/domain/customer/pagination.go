package customer

import (
	"context"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// PageRequest selects one page of customers. After and Before are cursors
// (customer ids) and are mutually exclusive; Before pages backwards.
type PageRequest struct {
	After        *int64
	Before       *int64
	PageSize     int
	IncludeTotal bool
}

// Validate is meant for callers; ListCustomers itself does not reject a
// request carrying both cursors.
func (r PageRequest) Validate() error {
	if r.After != nil && r.Before != nil {
		return fmt.Errorf("%w: Specify only one of 'after' or 'before'.", apperrors.ErrInvalidArgument)
	}
	return nil
}

type PageInfo struct {
	NextCursor *int64
	PrevCursor *int64
	PageSize   int
	HasNext    bool
	TotalCount *int64
}

// Page items are always in ascending id order, whatever the direction.
type Page struct {
	Items    []*Customer
	PageInfo PageInfo
}

func (s *customerService) ListCustomers(ctx context.Context, req PageRequest) (*Page, error) {
	// Leaves room for the over-fetch of one.
	pageSize := min(max(1, req.PageSize), math.MaxInt-1)
	fetchSize := pageSize + 1
	isBackward := req.Before != nil

	log := s.logger.With(slog.Int("pageSize", pageSize), slog.Bool("backward", isBackward))
	log.DebugContext(ctx, "Attempting to list customers")

	var (
		customers []*Customer
		err       error
	)
	switch {
	case isBackward:
		customers, err = s.repo.FindDescendingBefore(ctx, *req.Before, fetchSize)
	case req.After == nil:
		customers, err = s.repo.FindAscendingAll(ctx, fetchSize)
	default:
		customers, err = s.repo.FindAscendingAfter(ctx, *req.After, fetchSize)
	}
	if err != nil {
		log.ErrorContext(ctx, "Repository error fetching customer page", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	hasExtra := len(customers) > pageSize
	if hasExtra {
		customers = customers[:pageSize]
	}
	if isBackward {
		slices.Reverse(customers)
	}
	if customers == nil {
		customers = make([]*Customer, 0)
	}

	info := PageInfo{PageSize: pageSize}
	if n := len(customers); n > 0 {
		next, prev := customers[n-1].CustomerID, customers[0].CustomerID
		info.NextCursor = &next
		info.PrevCursor = &prev
	}

	if isBackward {
		// Answered against the original boundary, not the backward over-fetch.
		info.HasNext, err = s.repo.ExistsAtOrAbove(ctx, *req.Before)
		if err != nil {
			log.ErrorContext(ctx, "Repository error checking for records past the cursor", slog.Any("error", err))
			return nil, fmt.Errorf("failed to list customers: %w", err)
		}
	} else {
		info.HasNext = hasExtra
	}

	if req.IncludeTotal {
		total, err := s.repo.Count(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Repository error counting customers", slog.Any("error", err))
			return nil, fmt.Errorf("failed to count customers: %w", err)
		}
		info.TotalCount = &total
	}

	direction := "forward"
	if isBackward {
		direction = "backward"
	}
	monitoring.RecordPageServed(direction)

	log.DebugContext(ctx, "Successfully listed customers", slog.Int("count", len(customers)), slog.Bool("hasNext", info.HasNext))
	return &Page{Items: customers, PageInfo: info}, nil
}
