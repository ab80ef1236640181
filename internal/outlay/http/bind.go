package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom registrations must
// happen during init, before the first Struct call.
var v = validator.New(validator.WithRequiredStructEnabled())

// bindJSON decodes the request body and checks the validate tags.
// On failure it writes a validation_error response and returns false.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body.")
		return false
	}
	if err := v.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Request is not valid."
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
