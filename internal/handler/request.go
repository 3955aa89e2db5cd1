package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field errors under their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errBadRequest marks a body or parameter that could not be read.
var errBadRequest = errors.New("bad request")

// decode reads a single JSON object from the request body into dst and runs
// struct validation on it. Unknown fields are rejected. An empty body is
// accepted when allowEmpty is set, leaving dst untouched.
//
// It writes the error response itself and reports whether the handler
// should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.writeError(w, r, err)
			return false
		case errors.Is(err, io.EOF) && allowEmpty:
			// nothing to validate
			return true
		case errors.Is(err, io.EOF):
			requestError(w, "request body is required", nil)
			return false
		default:
			requestError(w, "malformed request body: "+err.Error(), nil)
			return false
		}
	}
	if dec.More() {
		requestError(w, "request body must contain a single JSON object", nil)
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			requestError(w, "request validation failed", fieldDetails(fieldErrs))
			return false
		}
		s.writeError(w, r, err)
		return false
	}
	return true
}

// fieldDetails maps each failing field to the rule it broke.
// e.g. {"title": "required", "base_currency": "len=3"}
func fieldDetails(errs validator.ValidationErrors) map[string]any {
	out := make(map[string]any, len(errs))
	for _, fe := range errs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}

// uuidParam parses the named chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a valid UUID", errBadRequest, name, raw)
	}
	return id, nil
}

// dayParam parses the {day} URL parameter as a 1-based day number.
func dayParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "day")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: day %q must be a positive integer", errBadRequest, raw)
	}
	return n, nil
}

// intQuery parses an optional integer query parameter. A missing value is nil.
func intQuery(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q must be an integer", errBadRequest, name, raw)
	}
	return &n, nil
}

// activityPath holds the parameters shared by every activity route.
type activityPath struct {
	itineraryID uuid.UUID
	day         int
	activityID  uuid.UUID
}

func parseActivityPath(r *http.Request, withActivity bool) (activityPath, error) {
	var p activityPath
	var err error
	if p.itineraryID, err = uuidParam(r, "id"); err != nil {
		return p, err
	}
	if p.day, err = dayParam(r); err != nil {
		return p, err
	}
	if withActivity {
		if p.activityID, err = uuidParam(r, "activityID"); err != nil {
			return p, err
		}
	}
	return p, nil
}

var supportedTags = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
	language.Portuguese,
	language.Japanese,
	language.Indonesian,
}

var supportedLanguages = language.NewMatcher(supportedTags)

// requestLanguage negotiates the locale used for display strings from the
// Accept-Language header. A missing or unparseable header yields American English.
func requestLanguage(r *http.Request) language.Tag {
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return language.AmericanEnglish
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return language.AmericanEnglish
	}
	_, idx, conf := supportedLanguages.Match(tags...)
	if conf == language.No {
		return language.AmericanEnglish
	}
	return supportedTags[idx]
}
