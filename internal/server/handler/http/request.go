package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/atinyakov/FinTrack/internal/pagination"
	"github.com/atinyakov/FinTrack/internal/service"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// maxBodyBytes limits JSON request bodies.
const maxBodyBytes = 1 << 20

// maxValue is the first amount that no longer fits NUMERIC(12, 2).
var maxValue = decimal.New(1, 10)

// decodeJSON reads a JSON body into dst. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return service.ValidationError{"body": bodyError(err)}
	}
	return nil
}

func bodyError(err error) string {
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	case errors.As(err, &maxErr):
		return "request body too large"
	default:
		return "malformed JSON: " + err.Error()
	}
}

// validationErr converts ozzo-validation field errors to a
// service.ValidationError keyed by JSON field name.
func validationErr(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := service.ValidationError{}
	for field, fe := range fieldErrs {
		out[field] = fe.Error()
	}
	return out
}

// registerRequest is the body of POST /api/users.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&r.Email, validation.Required, validation.Length(1, 255), is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 255)),
	)
}

// loginRequest is the body of POST /api/users/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// entryRequest is the body of create, update and patch requests. Every
// field is a pointer so that absent and null can be told from zero values.
type entryRequest struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	Value           *decimal.Decimal `json:"value"`
	TransactionDate *models.Date     `json:"transaction_date"`
}

var (
	titleRules = []validation.Rule{validation.RuneLength(1, 255)}
	valueRules = []validation.Rule{validation.By(validAmount)}
)

// validAmount accepts positive amounts with at most two decimal places.
func validAmount(v any) error {
	d, _ := v.(*decimal.Decimal)
	if d == nil {
		return nil
	}
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}
	if !d.Equal(d.Truncate(2)) {
		return errors.New("must have at most 2 decimal places")
	}
	if d.GreaterThanOrEqual(maxValue) {
		return errors.New("is too large")
	}
	return nil
}

// validateCreate requires title and value; the date defaults later.
func (r *entryRequest) validateCreate() error {
	return validationErr(validation.ValidateStruct(r,
		validation.Field(&r.Title, append([]validation.Rule{validation.Required}, titleRules...)...),
		validation.Field(&r.Value, append([]validation.Rule{validation.NotNil}, valueRules...)...),
	))
}

// validateUpdate requires every field except description.
func (r *entryRequest) validateUpdate() error {
	return validationErr(validation.ValidateStruct(r,
		validation.Field(&r.Title, append([]validation.Rule{validation.Required}, titleRules...)...),
		validation.Field(&r.Value, append([]validation.Rule{validation.NotNil}, valueRules...)...),
		validation.Field(&r.TransactionDate, validation.NotNil),
	))
}

// validatePatch checks only the fields that are present.
func (r *entryRequest) validatePatch() error {
	return validationErr(validation.ValidateStruct(r,
		validation.Field(&r.Title, append([]validation.Rule{validation.NilOrNotEmpty}, titleRules...)...),
		validation.Field(&r.Value, valueRules...),
	))
}

func (r *entryRequest) fields() models.EntryFields {
	f := models.EntryFields{Description: r.Description}
	if r.Title != nil {
		f.Title = *r.Title
	}
	if r.Value != nil {
		f.Value = *r.Value
	}
	if r.TransactionDate != nil {
		f.TransactionDate = *r.TransactionDate
	}
	return f
}

func (r *entryRequest) patch() models.EntryPatch {
	return models.EntryPatch{
		Title:           r.Title,
		Description:     r.Description,
		Value:           r.Value,
		TransactionDate: r.TransactionDate,
	}
}

// parseListQuery reads start_date, end_date, page and page_size. Absent
// numbers are left at zero for the service to default.
func parseListQuery(q url.Values) (models.ListFilter, pagination.Filters, error) {
	var (
		filter models.ListFilter
		raw    pagination.Filters
		verr   = service.ValidationError{}
	)

	if s := q.Get("start_date"); s != "" {
		if d, err := models.ParseDate(s); err != nil {
			verr["start_date"] = "must be a date in YYYY-MM-DD format"
		} else {
			filter.StartDate = &d
			raw.StartDate = s
		}
	}
	if s := q.Get("end_date"); s != "" {
		if d, err := models.ParseDate(s); err != nil {
			verr["end_date"] = "must be a date in YYYY-MM-DD format"
		} else {
			filter.EndDate = &d
			raw.EndDate = s
		}
	}
	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			verr["page"] = "must be an integer no less than 1"
		}
		filter.Page = n
	}
	if s := q.Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > pagination.MaxPageSize {
			verr["page_size"] = "must be an integer between 1 and " + strconv.Itoa(pagination.MaxPageSize)
		}
		filter.PageSize = n
	}

	if len(verr) > 0 {
		return filter, raw, verr
	}
	return filter, raw, nil
}
