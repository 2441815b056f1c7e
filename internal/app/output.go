package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The design rules refused the command
	ExitCommandError = 2 // Bad arguments, unreadable config, storage unavailable
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// printer writes command results as text or JSON.
type printer struct {
	format string
	w      io.Writer
}

type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// result prints data. In text mode text is printed instead.
func (p printer) result(text string, data any) error {
	if p.format == "json" {
		return p.json(response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(p.w, text)
	return err
}

// rejected prints a refused command. It is not an error to the printer,
// but the command still exits with ExitFailure.
func (p printer) rejected(err error) error {
	if p.format == "json" {
		if perr := p.json(response{Status: "rejected", Error: err.Error()}); perr != nil {
			return perr
		}
	} else {
		fmt.Fprintf(p.w, "rejected: %s\n", err)
	}
	return WrapExitError(ExitFailure, "rejected", err)
}

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
