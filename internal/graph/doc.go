// Package graph implements the dialog state machine that coordinates the
// assistant roster. Nodes transform dialog state; a static routing table
// decides which node runs next; the orchestrator walks the table one node
// at a time, persisting a checkpoint after every step so an interrupted
// turn can be resumed from where it stopped.
package graph
