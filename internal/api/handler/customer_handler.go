package handler

import (
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service    customer.CustomerService
	pagination config.PaginationConfig
	logger     *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, pagination config.PaginationConfig, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	if pagination.MaxPageSize < 1 {
		pagination.MaxPageSize = 100
	}
	if pagination.DefaultPageSize < 1 || pagination.DefaultPageSize > pagination.MaxPageSize {
		pagination.DefaultPageSize = min(20, pagination.MaxPageSize)
	}
	return &CustomerHandler{
		service:    s,
		pagination: pagination,
		logger:     l.With("component", "CustomerHandler"),
	}
}

func getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: customerID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid customerID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

func parseCursor(q url.Values, name string) (*int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' must be an integer customer id", apperrors.ErrInvalidArgument, name)
	}
	return &v, nil
}

func (h *CustomerHandler) parsePageRequest(r *http.Request) (customer.PageRequest, error) {
	q := r.URL.Query()
	req := customer.PageRequest{PageSize: h.pagination.DefaultPageSize}

	var err error
	if req.After, err = parseCursor(q, "after"); err != nil {
		return req, err
	}
	if req.Before, err = parseCursor(q, "before"); err != nil {
		return req, err
	}

	if raw := q.Get("pageSize"); raw != "" {
		size, convErr := strconv.Atoi(raw)
		if convErr != nil || size < 1 || size > h.pagination.MaxPageSize {
			return req, fmt.Errorf("%w: 'pageSize' must be between 1 and %d", apperrors.ErrInvalidArgument, h.pagination.MaxPageSize)
		}
		req.PageSize = size
	}

	if raw := q.Get("includeTotal"); raw != "" {
		include, convErr := strconv.ParseBool(raw)
		if convErr != nil {
			return req, fmt.Errorf("%w: 'includeTotal' must be true or false", apperrors.ErrInvalidArgument)
		}
		req.IncludeTotal = include
	}

	return req, req.Validate()
}

// CreateCustomer handles POST /api/customers
// @Summary Create a new customer
// @Description Creates a customer record. The id and timestamps are assigned by the service.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} dto.CustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Malformed JSON or failed field validation"
// @Failure 409 {object} dto.ErrorResponse "Integrity constraint violation"
// @Failure 500 {object} dto.ErrorResponse "Internal server error during creation"
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create customer request")

	var req *dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, msgMalformedJSON))
		return
	}
	if req == nil {
		h.logger.WarnContext(r.Context(), "Request body decoded to null")
		respondError(w, fmt.Errorf("%w: %s", apperrors.ErrInvalidArgument, "Request body is required"))
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		respondError(w, err)
		return
	}

	createdCustomer, err := h.service.CreateCustomer(r.Context(), input)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to create customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerResponse(createdCustomer)
	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.Int64("customerID", resp.ID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetCustomer handles GET /api/customers/{customerID}
// @Summary Retrieve customer details
// @Description Retrieves a single customer by id.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	domainCustomer, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(domainCustomer))
}

// ListCustomers handles GET /api/customers
// @Summary List customers
// @Description Returns one page of customers in ascending id order. Use nextCursor as 'after' for the next page and prevCursor as 'before' for the previous one.
// @Tags Customers
// @Produce json
// @Param after query int false "Return customers with id greater than this cursor"
// @Param before query int false "Return customers with id less than this cursor"
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Param includeTotal query bool false "Include the total number of customers" default(false)
// @Success 200 {object} dto.CustomerPageResponse "One page of customers"
// @Failure 400 {object} dto.ErrorResponse "Invalid pagination parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	pageReq, err := h.parsePageRequest(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid pagination parameters", slog.Any("error", err))
		respondError(w, err)
		return
	}

	page, err := h.service.ListCustomers(r.Context(), pageReq)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list customers", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Customers listed successfully", slog.Int("count", len(page.Items)))
	respondJSON(w, http.StatusOK, dto.NewCustomerPageResponse(page))
}
