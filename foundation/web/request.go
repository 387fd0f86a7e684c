package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// validate holds a single cached Validate instance so that it only
// has to parse struct tags once for each type.
var validate = validator.New()

// Decode reads the request body, sniffs its content so malformed or
// non-JSON bodies are rejected before json.Unmarshal ever runs, and
// then decodes and validates the result into val, which must be a
// pointer to a struct whose fields carry "validate" tags understood
// by go-playground/validator.
func Decode(r *http.Request, val any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("reading request body: %w", err)
	}

	mtype := mimetype.Detect(data)
	if !mtype.Is("text/plain") && !mtype.Is("application/json") {
		return NewTrustedError(fmt.Errorf("unsupported content type %q", mtype.String()), http.StatusUnsupportedMediaType)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(val); err != nil {
		return NewTrustedError(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Struct(val); err != nil {
		var verrors validator.ValidationErrors
		if errors.As(err, &verrors) {
			return NewTrustedError(fmt.Errorf("field validation error: %w", verrors), http.StatusBadRequest)
		}
		return err
	}

	return nil
}

