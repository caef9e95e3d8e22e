package dialog

import "errors"

// ErrInvalidTransition is returned when a stack update names an op outside
// the closed skill set. It signals a programming error in a node and is never
// recovered.
var ErrInvalidTransition = errors.New("invalid dialog stack transition")

// ErrThreadNotFound is returned when a thread ID cannot be found in the store.
var ErrThreadNotFound = errors.New("thread not found")

// ErrRecursionLimit is returned when a turn exhausts its step budget. The
// checkpoint from the last completed node remains valid and the turn may be
// resumed.
var ErrRecursionLimit = errors.New("recursion limit exceeded")

// ErrEmptyResponse is returned when the model keeps yielding non-actionable
// responses past the assistant node's local retry budget.
var ErrEmptyResponse = errors.New("model returned no actionable response")
