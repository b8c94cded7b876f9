package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/brahmapath/internal/flow"
	"github.com/julianstephens/brahmapath/internal/logger"
	"github.com/julianstephens/brahmapath/internal/progression"
	"github.com/julianstephens/brahmapath/internal/remote"
)

// userMessages maps sentinel errors to the inline text shown on a screen.
var userMessages = []struct {
	err error
	msg string
}{
	{remote.ErrInvalidCredentials, "Invalid email or password."},
	{remote.ErrEmailTaken, "An account with this email already exists. Sign in instead."},
	{remote.ErrEmailNotConfirmed, "Account created. Please check your email."},
	{remote.ErrOffline, "You are offline. Your progress is saved on this device."},
	{remote.ErrNoSession, "Your session has ended. Please sign in again."},
	{progression.ErrGateLocked, "Today's sadhana is already complete. Return when the timer ends."},
	{progression.ErrJournalClosed, "Complete today's sadhana to unlock the journal."},
	{progression.ErrEmptyJournal, "Write a few words before reflecting."},
	{flow.ErrInvalidTransition, "That action is not available on this screen."},
}

// UserMessage returns the text shown to the user for err. Known sentinel
// errors get a fixed message; anything else falls back to the error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if stderrors.Is(err, m.err) {
			return m.msg
		}
	}
	return err.Error()
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
