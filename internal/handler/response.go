package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/dukerupert/tally/internal/store"
	ws "github.com/dukerupert/tally/internal/websocket"
	"github.com/go-playground/validator/v10"
)

// Broadcaster publishes change notifications. *websocket.Hub implements it.
type Broadcaster interface {
	Broadcast(msg ws.Message)
}

var validate = newValidator()

// newValidator reports field errors under their JSON names so clients can
// match them to form fields.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateActionSign, actionRequest{})
	return v
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

var errInvalidJSON = errors.New("invalid JSON")

// maxBodyBytes caps request bodies; larger bodies fail as invalid JSON.
const maxBodyBytes = 1 << 20

// normalizer is implemented by request types that clean up input (trimming
// names and the like) before validation.
type normalizer interface {
	normalize()
}

// decode reads a JSON body into dst, normalizes it and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return errInvalidJSON
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	return validate.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps err to a status code. Anything unrecognized is logged and
// answered with a generic 500 using fallback as the message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, errInvalidJSON):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			fields[fieldPath(fe)] = rule
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fields})
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		logger.Error(fallback, "error", err)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

// fieldPath strips the request struct name from the namespace, so
// "assignmentRequest.personIds[1]" becomes "personIds[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func broadcast(b Broadcaster, entity, action string, id int64, extra map[string]any) {
	if b == nil {
		return
	}
	b.Broadcast(ws.NewMessage(entity, action, id, extra))
}
