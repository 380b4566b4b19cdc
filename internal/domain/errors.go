package domain

import "errors"

// Sentinel errors shared across usecases. Wrap with fmt.Errorf("...: %w", ...)
// and branch with errors.Is on the caller side.
var (
	// ErrInvalidInput means a request violated a structural precondition
	// (non-positive reference price, negative percent, unknown direction,
	// non-finite number). Recoverable by re-prompting the operator.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateResult means the inputs were individually valid but
	// combined into an unusable output (a non-positive derived price).
	// Kept distinct from ErrInvalidInput so the UI can explain why.
	ErrDegenerateResult = errors.New("degenerate result")

	// ErrNotFound is returned by repositories for missing rows.
	ErrNotFound = errors.New("not found")
)
