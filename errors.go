package wfq

import "errors"

// ErrTooManyFlows indicates that the flow table already holds MaxFlows
// flows and an arrival would create one more.
var ErrTooManyFlows = errors.New("wfq: too many flows")

// ErrNegativeWeight indicates that a packet or flow was given a weight
// that is not a positive number.
var ErrNegativeWeight = errors.New("wfq: weight must be positive")

// ErrImpossibleState indicates that the scheduler detected a numerically
// impossible state (e.g. a negative Σw) during [Scheduler.Run]. This
// always indicates a bug in the scheduler's bookkeeping rather than bad
// input, but is still returned rather than panicked so that a caller
// such as cmd/wfqsim can log it and exit cleanly.
var ErrImpossibleState = errors.New("wfq: impossible scheduler state")
