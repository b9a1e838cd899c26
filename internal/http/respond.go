package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"saldo/internal/allocation"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/middleware/trace"
	"saldo/internal/settlement"
	"saldo/internal/store"
)

const maxBodyBytes = 1 << 20

var errBadJSON = errors.New("malformed JSON body")

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	RequestID string            `json:"requestId,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}

// decode reads a JSON body into dst and runs struct validation.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadJSON)
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return s.validate.Struct(dst)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, errBadJSON):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	case errors.Is(err, core.ErrClientNotFound),
		errors.Is(err, core.ErrPaymentNotFound),
		errors.Is(err, core.ErrWorkItemNotFound),
		errors.Is(err, core.ErrMaterialNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, allocation.ErrInsufficientBalance),
		errors.Is(err, store.ErrDuplicateAllocation),
		errors.Is(err, settlement.ErrStaleItem):
		return http.StatusConflict, log.ErrorTypeConflict
	case errors.Is(err, errInvalidInput),
		errors.Is(err, core.ErrInvalidDay),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidHours),
		errors.Is(err, core.ErrInvalidRate),
		errors.Is(err, core.ErrInvalidCost),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrMissingClient),
		errors.Is(err, core.ErrInvalidLineItem),
		errors.Is(err, core.ErrSettledNotPaid),
		errors.Is(err, core.ErrDescriptionLength),
		errors.Is(err, allocation.ErrInvalidPolicy),
		errors.Is(err, allocation.ErrInvalidBalance),
		errors.Is(err, allocation.ErrUnknownCandidate),
		errors.Is(err, store.ErrInvalidOrder),
		errors.Is(err, settlement.ErrEmptyDecision),
		errors.Is(err, settlement.ErrDecisionExceedsBalance),
		errors.Is(err, settlement.ErrClientMismatch):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	}
	return http.StatusInternalServerError, log.ErrorTypeInternal
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	requestID := trace.GetRequestID(r.Context())

	body := errorResponse{Error: err.Error(), Code: code, RequestID: requestID}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body.Error = "request validation failed"
		body.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			body.Fields[fe.Field()] = validationMessage(fe)
		}
	}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
	}

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	f := log.NewFields().WithError(err, code)
	f[log.FieldMethod] = r.Method
	f[log.FieldPath] = r.URL.Path
	f[log.FieldStatusCode] = status
	log.FromContext(r.Context()).LogFields(r.Context(), level, "Request failed", f)

	writeJSON(w, status, body)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return "Must be at most " + fe.Param()
	case "min":
		return "Must be at least " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	}
	return "Invalid value"
}

// pathID reads a numeric mux variable.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", errInvalidInput, name)
	}
	return id, nil
}

// queryID reads an optional numeric query parameter; absent means 0.
func queryID(r *http.Request, name string) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %s", errInvalidInput, name)
	}
	return id, nil
}
