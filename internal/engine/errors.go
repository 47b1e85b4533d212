package engine

import "errors"

// TokenLimitError is the engine's out-of-bounds failure raised when a text
// piece produces more synthesis tokens than the model window holds. It is
// the only engine error the pipeline retries.
type TokenLimitError struct {
	Msg string
}

func (e *TokenLimitError) Error() string { return e.Msg }

// IsTokenLimit reports whether err carries the token-limit signature.
func IsTokenLimit(err error) bool {
	var tl *TokenLimitError
	return errors.As(err, &tl)
}

// ValidationError marks a request rejected before any synthesis work:
// unknown voice or language, or a malformed blend spec. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is a pre-synthesis validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
