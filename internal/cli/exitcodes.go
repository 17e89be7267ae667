package cli

import (
	"errors"

	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/runner"
	"github.com/yaklabco/selwalk/pkg/selector"
)

// Exit codes for selwalk.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitLintErrors indicates lint completed but found errors.
	ExitLintErrors = 1

	// ExitLintWarnings indicates lint completed but found warnings (when strict mode).
	ExitLintWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage, including bad selectors.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates that some files could not be read or parsed.
	ExitIOError = 74
)

var (
	// ErrLintIssuesFound is returned when error-severity diagnostics were reported.
	ErrLintIssuesFound = errors.New("lint issues found")

	// ErrLintWarningsFound is returned in strict mode when only warnings were reported.
	ErrLintWarningsFound = errors.New("lint warnings found")

	// ErrFilesFailed is returned when some files could not be linted.
	ErrFilesFailed = errors.New("some files could not be linted")

	// ErrConfig marks configuration loading failures.
	ErrConfig = errors.New("configuration error")

	// ErrUsage marks invalid arguments.
	ErrUsage = errors.New("invalid usage")
)

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	if result.Stats.DiagnosticsBySeverity[config.SeverityError] > 0 {
		return ExitLintErrors
	}
	if strict && result.Stats.DiagnosticsBySeverity[config.SeverityWarning] > 0 {
		return ExitLintWarnings
	}
	if result.Stats.FilesErrored > 0 {
		return ExitIOError
	}

	return ExitSuccess
}

// resultError maps an exit code from ExitCodeFromResult to the error runLint returns.
func resultError(code int) error {
	switch code {
	case ExitLintErrors:
		return ErrLintIssuesFound
	case ExitLintWarnings:
		return ErrLintWarningsFound
	case ExitIOError:
		return ErrFilesFailed
	default:
		return nil
	}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrLintIssuesFound):
		return ExitLintErrors
	case errors.Is(err, ErrLintWarningsFound):
		return ExitLintWarnings
	case errors.Is(err, ErrFilesFailed):
		return ExitIOError
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, ErrUsage), isSelectorError(err):
		return ExitInvalidUsage
	default:
		return ExitInternalError
	}
}

// IsReported reports whether err only signals an exit status that the command has
// already explained in its output.
func IsReported(err error) bool {
	return errors.Is(err, ErrLintIssuesFound) || errors.Is(err, ErrLintWarningsFound) || errors.Is(err, ErrFilesFailed)
}

func isSelectorError(err error) bool {
	for _, sentinel := range []error{
		selector.ErrUnknownPseudo, selector.ErrUnbalanced, selector.ErrBadAttribute,
		selector.ErrBadNth, selector.ErrUnexpected,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
