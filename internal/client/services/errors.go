package services

import (
	"errors"

	"github.com/dmitrijs2005/aidocpro/internal/client/client"
	"github.com/dmitrijs2005/aidocpro/internal/client/identity"
	"github.com/dmitrijs2005/aidocpro/internal/common"
)

var (
	ErrBusy             = errors.New("operation already in progress")
	ErrEmptyPrompt      = errors.New("prompt is empty")
	ErrNoFiles          = errors.New("no files selected")
	ErrEmptyInstruction = errors.New("instruction is empty")
	ErrNothingToApply   = errors.New("no replacement has a value")
	ErrNotAnalyzed      = errors.New("document has not been analyzed")
	ErrAuthRequired     = errors.New("sign-in required")
	ErrNotOwner         = errors.New("template belongs to another user")
	ErrInvalidCategory  = errors.New("invalid template category")
	ErrEmptyName        = errors.New("name is empty")
	ErrEmptyEmail       = errors.New("email is empty")
	ErrEmptyPassword    = errors.New("password is empty")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrNoTemplateFile   = errors.New("template has no file")
	ErrUnknownNamespace = errors.New("unknown shortcut namespace")
)

// UserMessage turns a workflow error into the text shown to the user.
// Server details and identity-provider messages pass through verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, client.ErrLimitReached):
		return common.MsgLimitReached
	case errors.Is(err, ErrEmptyPrompt):
		return common.MsgEmptyPrompt
	case errors.Is(err, ErrNoFiles):
		return common.MsgNoFiles
	case errors.Is(err, ErrEmptyInstruction):
		return common.MsgEmptyInstruction
	case errors.Is(err, ErrNothingToApply):
		return common.MsgNothingToApply
	case errors.Is(err, ErrAuthRequired):
		return common.MsgAuthRequired
	case errors.Is(err, ErrNotOwner):
		return common.MsgNotOwner
	case errors.Is(err, ErrBusy):
		return common.MsgBusy
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	var provErr *identity.ProviderError
	if errors.As(err, &provErr) {
		return provErr.Error()
	}

	if errors.Is(err, client.ErrUnavailable) || errors.Is(err, identity.ErrUnavailable) {
		return common.MsgServerUnavailable
	}

	return common.MsgGenericError
}
