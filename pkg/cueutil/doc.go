// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE files against an embedded schema.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	values, err := cueutil.Decode[map[string]any](schema, data, "#Config",
//		cueutil.WithFilename(path), cueutil.WithConcrete(false))
package cueutil
