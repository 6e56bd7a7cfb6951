package dto

import (
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// fieldMessages holds the client facing message per json field and failed tag.
var fieldMessages = map[string]map[string]string{
	"firstName": {
		"required": "First name is mandatory",
		"notblank": "First name is mandatory",
	},
	"lastName": {
		"required": "Last name is mandatory",
		"notblank": "Last name is mandatory",
	},
	"dateOfBirth": {
		"required": "Date of birth is required",
		"datetime": "Date of birth must be a valid date (YYYY-MM-DD)",
		"pastdate": "Date of birth must be in the past",
	},
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	_ = v.RegisterValidation("pastdate", func(fl validator.FieldLevel) bool {
		d, err := time.Parse(customer.DateLayout, fl.Field().String())
		if err != nil {
			return false
		}
		return customer.IsPastDate(d, time.Now())
	})

	return v
}

type CreateCustomerRequest struct {
	FirstName   string `json:"firstName" validate:"required,notblank" example:"Jane"`
	LastName    string `json:"lastName" validate:"required,notblank" example:"Doe"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02,pastdate" example:"1990-01-15"`
}

// Validate reports every failing field at once as an apperrors.ValidationError.
func (r *CreateCustomerRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	fields := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		fields[fe.Field()] = msg
	}
	return apperrors.NewFieldValidationError(fields)
}

// ToInput expects a request that already passed Validate.
func (r *CreateCustomerRequest) ToInput() (*customer.NewCustomerInput, error) {
	dob, err := time.Parse(customer.DateLayout, r.DateOfBirth)
	if err != nil {
		return nil, apperrors.NewFieldValidationError(map[string]string{
			"dateOfBirth": fieldMessages["dateOfBirth"]["datetime"],
		})
	}
	return &customer.NewCustomerInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: dob,
	}, nil
}

type CustomerResponse struct {
	ID          int64     `json:"id" example:"1"`
	FirstName   string    `json:"firstName" example:"Jane"`
	LastName    string    `json:"lastName" example:"Doe"`
	DateOfBirth string    `json:"dateOfBirth" example:"1990-01-15"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	return CustomerResponse{
		ID:          cust.CustomerID,
		FirstName:   cust.FirstName,
		LastName:    cust.LastName,
		DateOfBirth: cust.DateOfBirth.Format(customer.DateLayout),
		CreatedAt:   cust.CreatedAt,
		UpdatedAt:   cust.UpdatedAt,
	}
}

// PageInfoResponse serialises absent cursors and totals as null.
type PageInfoResponse struct {
	NextCursor *int64 `json:"nextCursor" example:"20"`
	PrevCursor *int64 `json:"prevCursor" example:"1"`
	PageSize   int    `json:"pageSize" example:"20"`
	HasNext    bool   `json:"hasNext" example:"true"`
	TotalCount *int64 `json:"totalCount"`
}

type CustomerPageResponse struct {
	Items    []CustomerResponse `json:"items"`
	PageInfo PageInfoResponse   `json:"pageInfo"`
}

func NewCustomerPageResponse(page *customer.Page) CustomerPageResponse {
	if page == nil {
		return CustomerPageResponse{Items: []CustomerResponse{}}
	}

	items := make([]CustomerResponse, len(page.Items))
	for i, cust := range page.Items {
		items[i] = NewCustomerResponse(cust)
	}

	return CustomerPageResponse{
		Items: items,
		PageInfo: PageInfoResponse{
			NextCursor: page.PageInfo.NextCursor,
			PrevCursor: page.PageInfo.PrevCursor,
			PageSize:   page.PageInfo.PageSize,
			HasNext:    page.PageInfo.HasNext,
			TotalCount: page.PageInfo.TotalCount,
		},
	}
}

type ErrorDetail struct {
	Code    string            `json:"code" example:"VALIDATION_FAILED"`
	Message string            `json:"message" example:"Validation Failed"`
	Field   string            `json:"field,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
