/*
Package dialog contains the core domain model for a rigmate conversation.

It defines the entities threaded through every turn of the assistant graph:
Messages, ToolCalls and their results, the dialog stack of active skills, and
the per-thread State snapshot that the orchestrator checkpoints after every
node. This package is kept pure and free of I/O or persistence concerns,
following Hexagonal Architecture principles.

# Key Entities

  - Message: one utterance (user, assistant, or tool), immutable once appended.
  - ToolCall: a structured request from the model to invoke a named capability.
  - Skill: a specialized conversational mode (PC build, price validation).
  - State: the runtime snapshot of a thread (messages, user info, dialog stack).
  - Checkpoint: the persisted form of State plus pending-step bookkeeping.
*/
package dialog
