/*
Package req decodes the payload of an HTTP request into a struct and validates it.

Query parameters and form values are matched to fields by "schema" struct tags,
JSON by "json" struct tags.
Rules are set with "validate" struct tags.
Alongside the standard rules, "enum" requires a [Validator], or a slice of them, to hold allowed values:

	type search struct {
		Env   trailrunner.Environment `schema:"env" validate:"enum"`
		Page  int                     `schema:"page" validate:"gte=1"`
		Terms []string                `schema:"q" validate:"required"`
	}

Failing rules return [ValidationErrors], which wrap trailrunner.ErrNotValid.
Malformed payloads return trailrunner.ErrBadFormat.
Passing anything other than a pointer to a struct returns trailrunner.ErrBadAny.
*/
package req
