// Package assistants defines the assistant roster: the system prompt,
// tool surface and executable registry bound to each node of the dialog
// graph. The primary assistant routes work by emitting delegate tool
// calls; the specialized assistants run catalog tools and hand control
// back with CompleteOrEscalate.
package assistants
