package rtspctl

import (
	"sync"
)

// cseqCounter generates sequence numbers.
// It is shared by all requests of a session and can be used by multiple goroutines.
type cseqCounter struct {
	mutex sync.Mutex
	value int
}

// next increments the counter and returns the new value.
// After 65534 comes 0.
func (c *cseqCounter) next() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.value = (c.value + 1) % cseqWrap
	return c.value
}
