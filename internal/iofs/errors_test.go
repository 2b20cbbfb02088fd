package iofs

import (
	"errors"
	"testing"

	"github.com/comparadb/comparasub/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrorConstructors verifies the structure of the errors the
// package produces: code, user message, vars and the wrapped cause.
func TestErrorConstructors(t *testing.T) {
	cause := errors.New("permission denied")

	tests := []struct {
		name    string
		err     error
		code    gn.ErrorCode
		pathVar string
		mention string
	}{
		{
			name:    "create dir",
			err:     CreateDirError("/srv/comparasub/config", cause),
			code:    errcode.CreateDirError,
			pathVar: "/srv/comparasub/config",
			mention: "cannot create",
		},
		{
			name:    "copy file",
			err:     CopyFileError("/srv/comparasub/config.yaml", cause),
			code:    errcode.CopyFileError,
			pathVar: "/srv/comparasub/config.yaml",
			mention: "cannot copy",
		},
		{
			name:    "read file",
			err:     ReadFileError("/srv/comparasub/regions.tsv", cause),
			code:    errcode.ReadFileError,
			pathVar: "/srv/comparasub/regions.tsv",
			mention: "cannot read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gnErr *gn.Error
			require.ErrorAs(t, tt.err, &gnErr)

			assert.Equal(t, tt.code, gnErr.Code)

			assert.NotEmpty(t, gnErr.Msg,
				"User message should not be empty")
			assert.Contains(t, gnErr.Msg, "%s",
				"Message should contain format placeholder")

			require.Len(t, gnErr.Vars, 1,
				"Should have one variable for message formatting")
			assert.Equal(t, tt.pathVar, gnErr.Vars[0],
				"Variable should be the path")

			require.NotNil(t, gnErr.Err)
			assert.ErrorIs(t, gnErr.Err, cause,
				"Should wrap original error")
			assert.Contains(t, gnErr.Err.Error(), tt.mention)
			assert.Contains(t, gnErr.Err.Error(), "from",
				"Error should mention caller context")
		})
	}
}

// TestReadFileError_Markup verifies the user message carries the
// emphasis markup the CLI renders.
func TestReadFileError_Markup(t *testing.T) {
	err := ReadFileError("/etc/comparasub.yaml", errors.New("no access"))

	gnErr := err.(*gn.Error)
	assert.Contains(t, gnErr.Msg, "<em>",
		"Message should contain emphasis tags")
	assert.Contains(t, gnErr.Err.Error(), "/etc/comparasub.yaml",
		"Internal error should carry the path")
}
