// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"github.com/invowk/procutil/pkg/types"
)

func TestLoadOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       LoadOptions
		wantFields int
	}{
		{"all empty", LoadOptions{}, 0},
		{"all valid", LoadOptions{ConfigFilePath: "/tmp/config.cue", ConfigDirPath: "/tmp/config"}, 0},
		{"whitespace file path", LoadOptions{ConfigFilePath: types.FilesystemPath("   ")}, 1},
		{"whitespace dir path", LoadOptions{ConfigDirPath: types.FilesystemPath("\t")}, 1},
		{"both invalid", LoadOptions{ConfigFilePath: " ", ConfigDirPath: "  "}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.wantFields == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidLoadOptions) {
				t.Fatalf("error should wrap ErrInvalidLoadOptions, got: %v", err)
			}
			var loadErr *InvalidLoadOptionsError
			if !errors.As(err, &loadErr) {
				t.Fatalf("error should be *InvalidLoadOptionsError, got: %T", err)
			}
			if len(loadErr.FieldErrors) != tt.wantFields {
				t.Errorf("expected %d field errors, got %d", tt.wantFields, len(loadErr.FieldErrors))
			}
			if !errors.Is(loadErr.FieldErrors[0], types.ErrInvalidFilesystemPath) {
				t.Errorf("field error should wrap ErrInvalidFilesystemPath, got: %v", loadErr.FieldErrors[0])
			}
		})
	}
}
