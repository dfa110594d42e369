// Package pipeline runs a single aggregation request from the raw nums
// parameter to a response envelope.
//
// # States
//
// Every run walks the same state machine:
//
//	start -> parsing -> aggregating -> responding -> success
//	            |            |
//	            +------------+--------> failed
//
// Validation is folded into parsing. A run that names an unknown operation
// fails from start. A panic in any stage fails the run with an internal
// error instead of escaping to the caller.
//
// Failed runs always carry an error envelope and successful runs always carry
// a result envelope; the two are never mixed.
package pipeline
