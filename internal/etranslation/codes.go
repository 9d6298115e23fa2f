package etranslation

import "fmt"

// Application error codes, returned on the same wire as provider codes so the
// caller sees a single negative-integer error space.
const (
	CodeEmptyText        = -1001
	CodeMissingLanguages = -1002
	CodeSameLanguages    = -1003
	CodeInvalidResponse  = -1004
	CodeNetworkError     = -1005
	CodeUnexpected       = -1006
)

// Provider error codes, from the eTranslation documentation. These pass
// through unchanged; the table below only maps them to readable messages.
const (
	CodeAuthenticationFailed     = -20001
	CodeInvalidLanguagePair      = -20002
	CodeTextTooLong              = -20003
	CodeConcurrencyQuotaExceeded = -20028
)

var messages = map[int]string{
	CodeEmptyText:                "Please enter some text to translate.",
	CodeMissingLanguages:         "Please select both source and target languages.",
	CodeSameLanguages:            "Source and target languages cannot be the same.",
	CodeInvalidResponse:          "Invalid response from translation service.",
	CodeNetworkError:             "Network error. Please check your internet connection.",
	CodeUnexpected:               "An unexpected error occurred. Please try again.",
	CodeAuthenticationFailed:     "Authentication failed. Please check your API credentials.",
	CodeInvalidLanguagePair:      "This language combination is not supported.",
	CodeTextTooLong:              "Text is too long. Please reduce the length and try again.",
	CodeConcurrencyQuotaExceeded: "Service is very busy. Please try again in a few minutes.",
}

// MessageFor returns the human-readable message for a code, falling back to a
// generic message for unrecognized codes.
func MessageFor(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Error code: %d", code)
}

// CodeError carries a negative wire code through the error chain, so handlers
// can put the exact code on the wire while logs keep the cause.
type CodeError struct {
	Code  int
	Cause error
}

func NewCodeError(code int) *CodeError {
	return &CodeError{Code: code}
}

func NewCodeErrorWithCause(code int, cause error) *CodeError {
	return &CodeError{Code: code, Cause: cause}
}

func (e *CodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (code %d): %v", MessageFor(e.Code), e.Code, e.Cause)
	}
	return fmt.Sprintf("%s (code %d)", MessageFor(e.Code), e.Code)
}

func (e *CodeError) Unwrap() error {
	return e.Cause
}

// Validation reports whether the code is a pre-submission validation failure,
// detected before any remote call.
func (e *CodeError) Validation() bool {
	switch e.Code {
	case CodeEmptyText, CodeMissingLanguages, CodeSameLanguages:
		return true
	}
	return false
}
