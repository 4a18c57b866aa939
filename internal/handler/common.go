package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"paysync/internal/errors"
)

const maxBodyBytes = 1 << 20

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, Response{Success: true, Message: message, Data: data})
}

// writeError renders err using its kind. Internal failures are reported
// with fallback instead of their own message; error details are only
// included when exposeErrors is set (development mode).
func writeError(w http.ResponseWriter, err error, fallback string, exposeErrors bool) {
	appErr := errors.AsAppError(err)

	message := appErr.Message
	if appErr.HTTPStatus() == http.StatusInternalServerError {
		message = fallback
	}

	response := Response{Success: false, Message: message}
	if exposeErrors {
		response.Error = &Error{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}

	writeJSON(w, appErr.HTTPStatus(), response)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.ErrInvalidRequestBody.WithDetails(err.Error())
	}
	return nil
}

// money renders a balance or amount with two fractional digits.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Response{Success: false, Message: "Route not found"})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Message: "Method not allowed"})
}

// Recovered reports a panic raised while serving a request.
func Recovered(w http.ResponseWriter, recovered interface{}, exposeErrors bool) {
	err := errors.NewAppError(errors.InternalError, "unexpected panic").WithDetails(fmt.Sprint(recovered))
	writeError(w, err, "Internal server error", exposeErrors)
}
