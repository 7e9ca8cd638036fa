package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"shopfront/internal/middleware"
	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Response is the success envelope returned by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    any         `json:"data"`
	Meta    *model.Meta `json:"meta,omitempty"`
}

const errSomethingWrong = "Something went wrong!"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already out; nothing useful left to send.
		return
	}
}

// respond writes a success envelope.
func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// respondPage writes a list envelope with pagination meta, applying the
// requested field projection.
func respondPage[T any](w http.ResponseWriter, message string, page *model.Page[T], logger zerolog.Logger) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	data, err := query.Project(items, page.Fields)
	if err != nil {
		writeError(w, err, logger)
		return
	}
	meta := page.Meta
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data, Meta: &meta})
}

// writeError translates err into the error envelope. Domain errors carry
// their own status; uniqueness violations become 409; anything else is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var (
		domainErr *model.DomainError
		conflict  *model.ConflictError
	)
	switch {
	case errors.As(err, &domainErr):
		sources := domainErr.Sources
		if len(sources) == 0 {
			sources = []model.ErrorSource{{Path: "", Message: domainErr.Message}}
		}
		if domainErr.Status >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", domainErr.Status).Msg("handler error")
		}
		writeJSON(w, domainErr.Status, model.ErrorResponse{Message: domainErr.Message, ErrorSources: sources})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, model.ErrorResponse{
			Message:      "Duplicate Entry",
			ErrorSources: []model.ErrorSource{{Path: conflict.Field, Message: conflict.Error()}},
		})
	default:
		logger.Error().Err(err).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Message:      errSomethingWrong,
			ErrorSources: []model.ErrorSource{{Path: "", Message: errSomethingWrong}},
		})
	}
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return model.BadRequest(model.ErrCodeBadRequest, "Request body is required")
		}
		return model.ValidationError(model.ErrorSource{Path: "body", Message: bodyErrorMessage(err)})
	}
	return nil
}

func bodyErrorMessage(err error) string {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &typeErr):
		return "Invalid value for " + typeErr.Field
	case errors.As(err, &syntaxErr):
		return "Malformed JSON"
	case errors.As(err, &tooLarge):
		return "Request body is too large"
	default:
		return strings.TrimPrefix(err.Error(), "json: ")
	}
}

// pathID parses the named path segment as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, model.ValidationError(model.ErrorSource{Path: name, Message: "Invalid " + name})
	}
	return id, nil
}

// currentUser returns the authenticated user. Routes using it are always
// behind middleware.Authenticate.
func currentUser(r *http.Request) *model.User {
	return middleware.UserFrom(r.Context())
}
