package handler_test

import (
	"bytes"
	"context"
	"customer-service/internal/api/handler"
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/config"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) CreateCustomer(ctx context.Context, input *customer.NewCustomerInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, input)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) ListCustomers(ctx context.Context, req customer.PageRequest) (*customer.Page, error) {
	ret := _m.Called(ctx, req)

	var r0 *customer.Page
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Page)
	}

	return r0, ret.Error(1)
}

var testPagination = config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100}

func setupHandler() (*MockCustomerService, *handler.CustomerHandler) {
	mockService := new(MockCustomerService)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mockService, handler.NewCustomerHandler(mockService, testPagination, logger)
}

func withCustomerID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("customerID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func sampleCustomer(id int64) *customer.Customer {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return &customer.Customer{
		CustomerID:  id,
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestNewCustomerHandler_Panics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Panics(t, func() { handler.NewCustomerHandler(nil, testPagination, logger) })
	assert.Panics(t, func() { handler.NewCustomerHandler(new(MockCustomerService), testPagination, nil) })
}

func TestCreateCustomer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(in *customer.NewCustomerInput) bool {
			return in.FirstName == "Jane" && in.LastName == "Doe" &&
				in.DateOfBirth.Equal(time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC))
		})).Return(sampleCustomer(1), nil).Once()

		body := `{"firstName":"Jane","lastName":"Doe","dateOfBirth":"1990-01-15"}`
		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "Jane", resp.FirstName)
		assert.Equal(t, "1990-01-15", resp.DateOfBirth)
		mockService.AssertExpectations(t)
	})

	t.Run("Error - Validation Failed", func(t *testing.T) {
		mockService, h := setupHandler()

		body := `{"firstName":"","lastName":"Doe","dateOfBirth":"2999-01-01"}`
		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, "Validation Failed", detail.Message)
		assert.Equal(t, "First name is mandatory", detail.Fields["firstName"])
		assert.Equal(t, "Date of birth must be in the past", detail.Fields["dateOfBirth"])
		mockService.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Error - Malformed JSON", func(t *testing.T) {
		mockService, h := setupHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`{"firstName": "Jane",`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed JSON request", decodeError(t, rec).Message)
		mockService.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Success - Unknown Field Ignored", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(in *customer.NewCustomerInput) bool {
			return in.FirstName == "Jane" && in.LastName == "Doe"
		})).Return(sampleCustomer(1), nil).Once()

		body := `{"firstName":"Jane","lastName":"Doe","dateOfBirth":"1990-01-15","address":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Error - Null Body", func(t *testing.T) {
		mockService, h := setupHandler()

		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(`null`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
		mockService.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Error - Conflict", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("CreateCustomer", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("failed to save new customer: %w", apperrors.ErrAlreadyExists)).Once()

		body := `{"firstName":"Jane","lastName":"Doe","dateOfBirth":"1990-01-15"}`
		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Database integrity violation: The record may already exist.", decodeError(t, rec).Message)
	})

	t.Run("Error - Integrity Conflict", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("CreateCustomer", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("failed to save new customer: %w", apperrors.ErrConflict)).Once()

		body := `{"firstName":"Jane","lastName":"Doe","dateOfBirth":"1990-01-15"}`
		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "CONFLICT", decodeError(t, rec).Code)
	})

	t.Run("Error - Internal", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("CreateCustomer", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: pq: relation does not exist", apperrors.ErrDatabase)).Once()

		body := `{"firstName":"Jane","lastName":"Doe","dateOfBirth":"1990-01-15"}`
		req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "An unexpected error occurred. Please try again later.", decodeError(t, rec).Message)
		assert.NotContains(t, rec.Body.String(), "relation does not exist")
	})
}

func TestGetCustomer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("GetCustomer", mock.Anything, int64(5)).Return(sampleCustomer(5), nil).Once()

		req := withCustomerID(httptest.NewRequest(http.MethodGet, "/api/customers/5", nil), "5")
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(5), resp.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("Error - Not Found", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("GetCustomer", mock.Anything, int64(99)).Return(nil, customer.ErrNotFound).Once()

		req := withCustomerID(httptest.NewRequest(http.MethodGet, "/api/customers/99", nil), "99")
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
	})

	t.Run("Error - Invalid ID", func(t *testing.T) {
		mockService, h := setupHandler()

		for _, id := range []string{"abc", "1.5", "99999999999999999999"} {
			req := withCustomerID(httptest.NewRequest(http.MethodGet, "/api/customers/"+id, nil), id)
			rec := httptest.NewRecorder()

			h.GetCustomer(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, id)
		}
		mockService.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Error - Non-positive ID Not Found", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("GetCustomer", mock.Anything, int64(0)).Return(nil, customer.ErrNotFound).Once()
		mockService.On("GetCustomer", mock.Anything, int64(-3)).Return(nil, customer.ErrNotFound).Once()

		for _, id := range []string{"0", "-3"} {
			req := withCustomerID(httptest.NewRequest(http.MethodGet, "/api/customers/"+id, nil), id)
			rec := httptest.NewRecorder()

			h.GetCustomer(rec, req)

			assert.Equal(t, http.StatusNotFound, rec.Code, id)
			assert.Equal(t, "Customer not found.", decodeError(t, rec).Message, id)
		}
		mockService.AssertExpectations(t)
	})

	t.Run("Error - Repository Failure", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("GetCustomer", mock.Anything, int64(5)).Return(nil, errors.New("boom")).Once()

		req := withCustomerID(httptest.NewRequest(http.MethodGet, "/api/customers/5", nil), "5")
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestListCustomers(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		mockService, h := setupHandler()
		page := &customer.Page{
			Items:    []*customer.Customer{sampleCustomer(1), sampleCustomer(2)},
			PageInfo: customer.PageInfo{NextCursor: int64Ptr(2), PrevCursor: int64Ptr(1), PageSize: 20},
		}
		mockService.On("ListCustomers", mock.Anything, customer.PageRequest{PageSize: 20}).Return(page, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.JSONEq(t, `{"nextCursor":2,"prevCursor":1,"pageSize":20,"hasNext":false,"totalCount":null}`, string(resp["pageInfo"]))
		mockService.AssertExpectations(t)
	})

	t.Run("All parameters", func(t *testing.T) {
		mockService, h := setupHandler()
		expected := customer.PageRequest{After: int64Ptr(20), PageSize: 5, IncludeTotal: true}
		mockService.On("ListCustomers", mock.Anything, expected).
			Return(&customer.Page{Items: []*customer.Customer{}, PageInfo: customer.PageInfo{PageSize: 5}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/customers?after=20&pageSize=5&includeTotal=true", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"items":[]`)
		mockService.AssertExpectations(t)
	})

	t.Run("Error - Both Cursors", func(t *testing.T) {
		mockService, h := setupHandler()

		req := httptest.NewRequest(http.MethodGet, "/api/customers?after=1&before=5", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Specify only one of 'after' or 'before'.", decodeError(t, rec).Message)
		mockService.AssertNotCalled(t, "ListCustomers", mock.Anything, mock.Anything)
	})

	t.Run("Error - Bad Parameters", func(t *testing.T) {
		mockService, h := setupHandler()

		for _, query := range []string{"pageSize=0", "pageSize=101", "pageSize=ten", "after=x", "before=1.5", "includeTotal=maybe"} {
			req := httptest.NewRequest(http.MethodGet, "/api/customers?"+query, nil)
			rec := httptest.NewRecorder()

			h.ListCustomers(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		}
		mockService.AssertNotCalled(t, "ListCustomers", mock.Anything, mock.Anything)
	})

	t.Run("Error - Service Failure", func(t *testing.T) {
		mockService, h := setupHandler()
		mockService.On("ListCustomers", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "db down")
	})
}

func TestCreateCustomer_TrailingData(t *testing.T) {
	_, h := setupHandler()

	body := bytes.NewBufferString(`{"firstName":"Jane","lastName":"Doe","dateOfBirth":"1990-01-15"} {"x":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/customers", body)
	rec := httptest.NewRecorder()

	h.CreateCustomer(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
