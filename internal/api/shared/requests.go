package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-words/internal/domain"
)

// MaxBodyBytes bounds request bodies. An exported collection with a few
// thousand words and their review states fits comfortably.
const MaxBodyBytes int64 = 8 << 20

var (
	// ErrEmptyBody is returned when a request carries no JSON document.
	ErrEmptyBody = errors.New("request body is empty")

	// ErrBodyTooLarge is returned when a body exceeds MaxBodyBytes.
	ErrBodyTooLarge = fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes)

	// ErrTrailingData is returned when a body holds more than one JSON value.
	ErrTrailingData = errors.New("request body must hold a single JSON value")
)

var validate = newValidator()

// newValidator adds the tags request structs in this API use on top of the
// validator built-ins:
//
//	notblank  the string has a non-space character
//	language  a supported interface language (en, nl)
func newValidator() *validator.Validate {
	v := validator.New()
	// ALLOW-PANIC: registration only fails for malformed tag names
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String && strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return domain.Language(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// DecodeJSON reads a single JSON value from the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		case errors.As(err, &tooLarge):
			return ErrBodyTooLarge
		}
		return err
	}
	if dec.More() {
		return ErrTrailingData
	}
	return nil
}

// ValidateRequest runs v's own Validate method when it has one and the
// struct tags otherwise.
func ValidateRequest(v interface{}) error {
	if sv, ok := v.(interface{ Validate() error }); ok {
		return sv.Validate()
	}
	return validate.Struct(v)
}
