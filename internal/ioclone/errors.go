package ioclone

import (
	"fmt"

	"github.com/comparadb/comparasub/pkg/errcode"
	"github.com/gnames/gn"
)

// ExistsCheckError creates an error for a failed destination existence
// check.
func ExistsCheckError(name string, err error) error {
	msg := "Cannot check whether destination <em>%s</em> exists"

	return &gn.Error{
		Code: errcode.CloneExistsCheckError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("cannot check destination %s: %w", name, err),
	}
}

// PromptError creates an error for a failed confirmation read.
func PromptError(err error) error {
	msg := "Cannot read the confirmation response"

	return &gn.Error{
		Code: errcode.ClonePromptError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("cannot read confirmation: %w", err),
	}
}
