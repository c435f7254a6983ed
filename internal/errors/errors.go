package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n  hint: " + hint
	}
	return msg
}

// Hint returns a short remedy for storage errors the user can act on.
func Hint(err error) string {
	switch {
	case stderrors.Is(err, storage.ErrUnsupported):
		return "accounts need a database backend; set DATABASE_URL or APP_MODE=prod"
	case stderrors.Is(err, storage.ErrDuplicateEmail):
		return "use 'habitlit user show --email' to look up the existing account"
	case stderrors.Is(err, storage.ErrUnknownUser):
		return "create the account first with 'habitlit user add --email'"
	case stderrors.Is(err, storage.ErrInvalidDate):
		return "dates use the YYYY-MM-DD format"
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
