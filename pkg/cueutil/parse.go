// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Decode unifies data with the definition at path in schema, validates the
// result and decodes it into a T. Validation errors name the offending
// field in JSON-path form ("run.forward_signals[1]").
func Decode[T any](schema string, data []byte, path string, opts ...Option) (T, error) {
	var out T

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if size := int64(len(data)); size > o.maxFileSize {
		return out, fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", o.filename, size, o.maxFileSize)
	}

	ctx := cuecontext.New()

	def := ctx.CompileString(schema).LookupPath(cue.ParsePath(path))
	if err := def.Err(); err != nil {
		return out, fmt.Errorf("internal error: schema definition %s: %w", path, err)
	}

	user := ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := user.Err(); err != nil {
		return out, formatError(err, o.filename)
	}

	unified := def.Unify(user)
	var validateOpts []cue.Option
	if o.concrete {
		validateOpts = append(validateOpts, cue.Concrete(true))
	}
	if err := unified.Validate(validateOpts...); err != nil {
		return out, formatError(err, o.filename)
	}

	if err := unified.Decode(&out); err != nil {
		return out, formatError(err, o.filename)
	}
	return out, nil
}
