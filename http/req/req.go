package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/trailrunner"
)

// A Parser decodes request payloads into structs and validates them.
// A Parser is safe for concurrent use.
type Parser struct {
	dec *schema.Decoder
	validator
}

// NewParser constructs a *Parser ignoring keys a struct does not declare.
func NewParser() *Parser {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return &Parser{dec: dec, validator: newValidator()}
}

// ParseJSON decodes the JSON in body into structPtr and validates it.
//
// ParseJSON reads body to its end.
// Use an [io.TeeReader] if body needs to be read again.
func (p *Parser) ParseJSON(body io.Reader, structPtr any) error {
	if err := checkStructPtr(structPtr); err != nil {
		return err
	}

	if err := json.NewDecoder(body).Decode(structPtr); err != nil {
		return fmt.Errorf("%w: decoding JSON: %s", trailrunner.ErrBadFormat, err)
	}

	return p.validate(structPtr)
}

// ParseValues decodes vals into structPtr, matching keys against "schema" struct tags, and validates it.
func (p *Parser) ParseValues(vals url.Values, structPtr any) error {
	if err := checkStructPtr(structPtr); err != nil {
		return err
	}

	if err := p.dec.Decode(structPtr, vals); err != nil {
		return translateDecoderError(err)
	}

	return p.validate(structPtr)
}

// ParseQuery decodes the query parameters of r into structPtr and validates it.
func (p *Parser) ParseQuery(r *http.Request, structPtr any) error {
	return p.ParseValues(r.URL.Query(), structPtr)
}

// ParseForm decodes the form values in the body of r into structPtr and validates it.
func (p *Parser) ParseForm(r *http.Request, structPtr any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: parsing form: %s", trailrunner.ErrBadFormat, err)
	}

	return p.ParseValues(r.PostForm, structPtr)
}

func checkStructPtr(structPtr any) error {
	v := reflect.ValueOf(structPtr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T is not a pointer to a struct", trailrunner.ErrBadAny, structPtr)
	}

	return nil
}

// translateDecoderError converts an error returned by *schema.Decoder into ValidationErrors,
// or a sentinel error when the struct itself is at fault.
func translateDecoderError(err error) error {
	var pkgErrs schema.MultiError
	if !errors.As(err, &pkgErrs) {
		return fmt.Errorf("%w: %s", trailrunner.ErrBadFormat, err)
	}

	var validErrs ValidationErrors
	for _, pkgErr := range pkgErrs {
		switch err := pkgErr.(type) {
		case schema.ConversionError:
			// Index is -1 for non-slice fields.
			validErrs = append(validErrs, ValidationError{
				Field: err.Key,
				Got:   fmt.Sprintf("bad value at index %d", max(0, err.Index)),
				Rule:  "must be " + err.Type.String(),
			})

		case schema.EmptyFieldError:
			return fmt.Errorf(`%w: mark fields "required" with validate tags, not schema tags`, trailrunner.ErrNotImplemented)

		case schema.UnknownKeyError:
			validErrs = append(validErrs, ValidationError{
				Field: err.Key,
				Got:   "value is set",
				Rule:  "unexpected key should not be set",
			})

		default:
			// schema only reports a missing converter once the key holds a value.
			if strings.Contains(err.Error(), "schema: converter not found for") {
				return fmt.Errorf("%w: cannot convert values into unsupported type: %s", trailrunner.ErrNotImplemented, err)
			}

			return fmt.Errorf("%w: %s", trailrunner.ErrUnexpected, err)
		}
	}

	return validErrs
}
