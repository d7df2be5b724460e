package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/resolve"
)

const (
	exitOK        = 0
	exitGeneric   = 1
	exitUsage     = 2
	exitAuth      = 3
	exitNotFound  = 4
	exitServer    = 5
	exitTransport = 6
)

// usageErr marks errors caused by how the command was invoked.
type usageErr struct {
	err error
}

func (e *usageErr) Error() string { return e.err.Error() }
func (e *usageErr) Unwrap() error { return e.err }

func usageError(err error) error {
	return &usageErr{err: err}
}

func usageErrorf(format string, args ...any) error {
	return &usageErr{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}

	var ue *usageErr
	var nf *resolve.NotFoundError
	var ae *resolve.AmbiguousError
	switch {
	case config.IsConfigError(err):
		return exitUsage
	case errors.As(err, &ue), api.IsArgumentError(err), errors.As(err, &ae):
		return exitUsage
	case errors.Is(err, config.ErrNoSession), api.IsStateError(err), api.IsAuthError(err), api.IsInvalidCredentialsError(err):
		return exitAuth
	case api.IsNotFoundError(err), errors.As(err, &nf):
		return exitNotFound
	case api.IsServerError(err):
		return exitServer
	case api.IsTransportError(err):
		return exitTransport
	case isCobraUsageError(err):
		return exitUsage
	}
	return exitGeneric
}

// isCobraUsageError recognizes the argument and flag errors cobra reports
// as plain strings.
func isCobraUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts at most",
		"accepts between",
		"invalid argument",
		"required flag",
	} {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
