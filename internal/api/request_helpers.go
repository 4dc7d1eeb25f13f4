package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/platform/logger"
)

// pathParam extracts a required URL path parameter. It writes a 400 response
// and returns false when the parameter is missing.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := chi.URLParam(r, name)
	if value == "" {
		logger.FromContext(r.Context()).Warn("missing path parameter", slog.String("param_name", name))
		shared.RespondWithError(w, r, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return value, true
}

// HandleAPIError writes the status code and safe message for err. A non-empty
// fallback replaces the generic message of unexpected errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string, opts ...shared.ResponseOption) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// decodeAndValidate decodes the JSON body into v and validates it. It writes
// a 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
