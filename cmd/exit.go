package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"slices"
	"strings"

	"github.com/lexia/kurai/filter"
	"github.com/lexia/kurai/lexia"
)

// Process exit codes
const (
	ExitOK             = 0
	ExitError          = 1
	ExitConfiguration  = 2
	ExitAuthentication = 3
	ExitNotFound       = 4
	ExitInvalidInput   = 5
	ExitRateLimited    = 6
	ExitService        = 7
	ExitAPI            = 8
	ExitFile           = 9
	ExitCanceled       = 130
)

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if kind, ok := lexia.KindOf(err); ok {
		switch kind {
		case lexia.KindConfiguration:
			return ExitConfiguration
		case lexia.KindAuthentication:
			return ExitAuthentication
		case lexia.KindNotFound:
			return ExitNotFound
		case lexia.KindValidation, lexia.KindInvalidInput:
			return ExitInvalidInput
		case lexia.KindRateLimit:
			return ExitRateLimited
		case lexia.KindService:
			return ExitService
		case lexia.KindCanceled:
			return ExitCanceled
		case lexia.KindFile:
			return ExitFile
		default:
			return ExitAPI
		}
	}

	var (
		cfgErr  *configError
		compErr *filter.CompilationError
		preset  *filter.UnknownPresetError
	)
	switch {
	case errors.As(err, &cfgErr):
		return ExitConfiguration
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitFile
	case isUsageError(err), errors.As(err, &compErr), errors.As(err, &preset), errors.Is(err, filter.ErrNotAList):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

// printError writes err as a single line, with rejected fields and the
// request id appended when the error carries them
func printError(w io.Writer, err error) {
	line := "Error: " + err.Error()

	if lexiaErr, ok := lexia.AsError(err); ok {
		var details []string
		switch detail := lexiaErr.Detail.(type) {
		case map[string]string:
			for _, field := range slices.Sorted(maps.Keys(detail)) {
				details = append(details, field+": "+detail[field])
			}
		case map[string]any:
			for _, field := range slices.Sorted(maps.Keys(detail)) {
				details = append(details, fmt.Sprintf("%s: %v", field, detail[field]))
			}
		case []any:
			for _, d := range detail {
				details = append(details, fmt.Sprint(d))
			}
		}
		if len(details) > 0 {
			line += " (" + strings.Join(details, "; ") + ")"
		}
		if lexiaErr.RequestID != "" && lexiaErr.StatusCode != 0 {
			line += " [request id: " + lexiaErr.RequestID + "]"
		}
	}

	fmt.Fprintln(w, strings.Join(strings.Fields(line), " "))
}
