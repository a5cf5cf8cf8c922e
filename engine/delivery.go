package engine

import "sync"

// deliveryQueueSize bounds the number of parallel notifications buffered before new ones are dropped.
// Readers are expected to drain the queue while processing.
const deliveryQueueSize = 256

// delivery fans results posted by the native callback thread out to a Go channel.
type delivery struct {
	mu      sync.Mutex
	ch      chan Result
	posted  int
	dropped int
}

// deliveries is process wide because the native callback is a static function.
var deliveries delivery

// open starts a new delivery session and returns its receiving end.
func (d *delivery) open(size int) <-chan Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ch != nil {
		close(d.ch)
	}
	d.ch = make(chan Result, size)
	d.posted = 0
	d.dropped = 0
	return d.ch
}

// post hands a result to the receiver without ever blocking the native thread.
func (d *delivery) post(r Result) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.posted++
	if d.ch == nil {
		d.dropped++
		return false
	}
	select {
	case d.ch <- r:
		return true
	default:
		d.dropped++
		return false
	}
}

// close ends the current session. Pending results stay readable.
func (d *delivery) close() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ch != nil {
		close(d.ch)
		d.ch = nil
	}
	return d.dropped
}

// droppedCount returns the results lost since the last open, still valid after close.
func (d *delivery) droppedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// postedCount returns the results posted since the last open.
func (d *delivery) postedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.posted
}
