// Package bytecounter contains a io.ReadWriter wrapper that counts
// transferred bytes and errors.
package bytecounter

import (
	"io"
	"sync/atomic"
)

// Counters are byte and error counters.
// They can be shared by multiple ByteCounters, also concurrently.
type Counters struct {
	BytesReceived atomic.Uint64
	BytesSent     atomic.Uint64
	ReadErrors    atomic.Uint64
	WriteErrors   atomic.Uint64
}

// ByteCounter is a io.ReadWriter wrapper that updates Counters.
type ByteCounter struct {
	rw io.ReadWriter
	c  *Counters
}

// New allocates a ByteCounter.
// If c is nil, dedicated counters are allocated.
func New(rw io.ReadWriter, c *Counters) *ByteCounter {
	if c == nil {
		c = &Counters{}
	}

	return &ByteCounter{
		rw: rw,
		c:  c,
	}
}

// Read implements io.ReadWriter.
func (bc *ByteCounter) Read(p []byte) (int, error) {
	n, err := bc.rw.Read(p)
	bc.c.BytesReceived.Add(uint64(n))

	if err != nil && err != io.EOF {
		bc.c.ReadErrors.Add(1)
	}

	return n, err
}

// Write implements io.ReadWriter.
func (bc *ByteCounter) Write(p []byte) (int, error) {
	n, err := bc.rw.Write(p)
	bc.c.BytesSent.Add(uint64(n))

	if err != nil {
		bc.c.WriteErrors.Add(1)
	}

	return n, err
}

// Counters returns the counters.
func (bc *ByteCounter) Counters() *Counters {
	return bc.c
}
