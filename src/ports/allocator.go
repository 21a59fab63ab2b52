// Package ports assigns gateway ports from the fixed OpenClaw sequence
// (18789, 18809, 18829, ...).
package ports

import (
	"errors"
	"fmt"
	"net"
)

// DefaultMaxAttempts bounds the sequence walk so a corrupted used-port set
// cannot send the allocator into an endless loop.
const DefaultMaxAttempts = 512

// ErrExhausted means no free port was found within the attempt bound.
var ErrExhausted = errors.New("port allocation exhausted")

// Allocator computes the next free port. Deterministic: the same used set
// and probe always yield the same port.
type Allocator struct {
	Base        int
	Step        int
	MaxAttempts int

	// Listening reports whether an unmanaged process already holds the
	// port. Nil means ProbeListen.
	Listening func(port int) bool
}

// New returns an allocator over the given arithmetic sequence with the
// default attempt bound and the real listen probe.
func New(base, step int) Allocator {
	return Allocator{Base: base, Step: step, MaxAttempts: DefaultMaxAttempts, Listening: ProbeListen}
}

// Allocate returns the lowest port of the sequence that is neither in the
// used set nor held by a live listener.
func (a Allocator) Allocate(used map[int]bool) (int, error) {
	maxAttempts := a.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	probe := a.Listening
	if probe == nil {
		probe = ProbeListen
	}
	for i := 0; i < maxAttempts; i++ {
		port := a.Base + i*a.Step
		if port > 65535 {
			break
		}
		if used[port] || probe(port) {
			continue
		}
		return port, nil
	}
	return 0, fmt.Errorf("%w: no free port in sequence starting at %d (step %d)", ErrExhausted, a.Base, a.Step)
}

// ProbeListen reports whether something is already listening on the port
// by attempting to bind it on loopback. A bind failure is treated as
// "in use", which errs on the safe side for permission problems too.
func ProbeListen(port int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return true
	}
	l.Close()
	return false
}
