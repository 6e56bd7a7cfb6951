package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"customer-service/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
)

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

const customerColumns = `id, first_name, last_name, date_of_birth, created_at, updated_at`

const (
	insertCustomerQuery = `
        INSERT INTO customers (first_name, last_name, date_of_birth, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	findCustomerByIDQuery = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	findCustomersAfterQuery = `SELECT ` + customerColumns + ` FROM customers WHERE id > $1 ORDER BY id ASC LIMIT $2`

	findCustomersFirstQuery = `SELECT ` + customerColumns + ` FROM customers ORDER BY id ASC LIMIT $1`

	findCustomersBeforeQuery = `SELECT ` + customerColumns + ` FROM customers WHERE id < $1 ORDER BY id DESC LIMIT $2`

	existsCustomerAtOrAboveQuery = `SELECT EXISTS (SELECT 1 FROM customers WHERE id >= $1)`

	countCustomersQuery = `SELECT COUNT(*) FROM customers`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func observe(queryName string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		status = "error"
	}
	monitoring.RecordDBQuery(queryName, status, time.Since(start))
}

func (r *CustomerRepository) Insert(ctx context.Context, cust *customer.Customer) (err error) {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer func(start time.Time) { observe("insert_customer", start, err) }(time.Now())

	r.logger.DebugContext(ctx, "Attempting to insert new customer")

	err = r.db.QueryRow(ctx, insertCustomerQuery,
		cust.FirstName,
		cust.LastName,
		cust.DateOfBirth,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) || errors.Is(translatedErr, apperrors.ErrConflict) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to constraint violation")
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to insert customer")
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (_ *customer.Customer, err error) {
	defer func(start time.Time) { observe("find_customer_by_id", start, err) }(time.Now())

	var cust customer.Customer
	err = r.db.QueryRow(ctx, findCustomerByIDQuery, customerID).Scan(
		&cust.CustomerID,
		&cust.FirstName,
		&cust.LastName,
		&cust.DateOfBirth,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to get customer by ID")
	}

	return &cust, nil
}

func (r *CustomerRepository) FindAscendingAfter(ctx context.Context, afterID int64, limit int) ([]*customer.Customer, error) {
	return r.queryCustomers(ctx, "find_customers_after", findCustomersAfterQuery, afterID, limit)
}

func (r *CustomerRepository) FindAscendingAll(ctx context.Context, limit int) ([]*customer.Customer, error) {
	return r.queryCustomers(ctx, "find_customers_first", findCustomersFirstQuery, limit)
}

func (r *CustomerRepository) FindDescendingBefore(ctx context.Context, beforeID int64, limit int) ([]*customer.Customer, error) {
	return r.queryCustomers(ctx, "find_customers_before", findCustomersBeforeQuery, beforeID, limit)
}

func (r *CustomerRepository) queryCustomers(ctx context.Context, queryName, query string, args ...any) (_ []*customer.Customer, err error) {
	defer func(start time.Time) { observe(queryName, start, err) }(time.Now())
	logCtx := r.logger.With(slog.String("operation", queryName))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to query customers")
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		var cust customer.Customer
		err = rows.Scan(
			&cust.CustomerID,
			&cust.FirstName,
			&cust.LastName,
			&cust.DateOfBirth,
			&cust.CreatedAt,
			&cust.UpdatedAt,
		)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, apperrors.WrapDatabaseError(err, "failed to scan customer row")
		}
		customers = append(customers, &cust)
	}

	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "error iterating customer rows")
	}

	logCtx.DebugContext(ctx, "Finished querying customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) ExistsAtOrAbove(ctx context.Context, customerID int64) (exists bool, err error) {
	defer func(start time.Time) { observe("exists_customer_at_or_above", start, err) }(time.Now())

	if err = r.db.QueryRow(ctx, existsCustomerAtOrAboveQuery, customerID).Scan(&exists); err != nil {
		r.logger.ErrorContext(ctx, "Failed to check for customers at or above id", slog.Any("error", err))
		return false, apperrors.WrapDatabaseError(err, "failed to check customer existence")
	}
	return exists, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (count int64, err error) {
	defer func(start time.Time) { observe("count_customers", start, err) }(time.Now())

	if err = r.db.QueryRow(ctx, countCustomersQuery).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.Any("error", err))
		return 0, apperrors.WrapDatabaseError(err, "failed to count customers")
	}
	return count, nil
}
