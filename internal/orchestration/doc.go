// Package orchestration holds the per-user application state of a GCD
// lesson: the current trace, its explanation, the chat transcript and the
// pending flags. It sequences the tutor collaborators and discards any
// response that belongs to a superseded calculation. Presentation layers
// read it through Snapshot and render via the presenter interfaces.
package orchestration
