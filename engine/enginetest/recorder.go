// Package enginetest - Scriptable in-memory engine for tests.
package enginetest

import (
	"sync"
	"time"

	"github.com/nvr-ai/go-liveness/engine"
)

// Call is one recorded engine call.
type Call struct {
	Name            string
	Config          string
	Parallel        bool
	ImageType       engine.ImageType
	Width           int
	Height          int
	StrideInSamples int
	Orientation     int
	DataLen         int
	Raw             bool
}

// Recorder records every call it receives and answers with scripted results.
//
// Calls without a scripted result succeed with a bodyless OK result, except Process which returns
// ProcessJSON.
type Recorder struct {
	mu sync.Mutex

	// ProcessJSON is the payload returned by successful Process calls.
	ProcessJSON string
	// Failures maps a call name (engine.CallInit, ...) to the result it returns.
	Failures map[string]engine.Result
	// Deliver makes Process also post its result on Results when Init was parallel.
	Deliver bool
	// DeliverAs replaces the delivered result when set.
	DeliverAs *engine.Result
	// Buffer is the capacity of the delivery channel, 16 when zero.
	Buffer int
	// DeliverTimeout bounds how long a delivery waits for a reader before being dropped.
	DeliverTimeout time.Duration

	calls   []Call
	results chan engine.Result
	dropped int
}

// New returns a recorder whose Process calls return processJSON.
func New(processJSON string) *Recorder {
	return &Recorder{
		ProcessJSON:    processJSON,
		Failures:       map[string]engine.Result{},
		DeliverTimeout: time.Second,
	}
}

// FailOn scripts the named call to fail with the given payload.
func (r *Recorder) FailOn(call string, code int, json string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[call] = engine.Result{Code: code, Phrase: "failed", JSON: json}
	return r
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Names returns the recorded call names in order.
func (r *Recorder) Names() []string {
	calls := r.Calls()
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.Name)
	}
	return names
}

// Count returns how many times the named call was made.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Name == name {
			n++
		}
	}
	return n
}

func (r *Recorder) record(c Call, ok engine.Result) engine.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if res, failed := r.Failures[c.Name]; failed {
		return res
	}
	return ok
}

// Init records the call.
func (r *Recorder) Init(config string, parallel bool) engine.Result {
	res := r.record(Call{Name: engine.CallInit, Config: config, Parallel: parallel}, engine.OK())
	if res.IsOK() && parallel {
		r.mu.Lock()
		size := r.Buffer
		if size <= 0 {
			size = 16
		}
		r.results = make(chan engine.Result, size)
		r.dropped = 0
		r.mu.Unlock()
	}
	return res
}

// WarmUp records the call.
func (r *Recorder) WarmUp(imageType engine.ImageType) engine.Result {
	return r.record(Call{Name: engine.CallWarmUp, ImageType: imageType}, engine.OK())
}

// Process records the call.
func (r *Recorder) Process(imageType engine.ImageType, data []byte, width, height, strideInSamples, orientation int) engine.Result {
	res := r.record(Call{
		Name:            engine.CallProcess,
		ImageType:       imageType,
		Width:           width,
		Height:          height,
		StrideInSamples: strideInSamples,
		Orientation:     orientation,
		DataLen:         len(data),
	}, engine.Result{Code: 0, Phrase: "OK", JSON: r.ProcessJSON, NumFaces: 1})

	if res.IsOK() {
		r.deliver(res)
	}
	return res
}

// deliver posts the result like the native callback thread, waiting at most DeliverTimeout.
func (r *Recorder) deliver(res engine.Result) {
	r.mu.Lock()
	ch := r.results
	if !r.Deliver || ch == nil {
		r.mu.Unlock()
		return
	}
	if r.DeliverAs != nil {
		res = *r.DeliverAs
	}
	r.mu.Unlock()

	timer := time.NewTimer(r.DeliverTimeout)
	defer timer.Stop()
	select {
	case ch <- res:
	case <-timer.C:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
	}
}

// Dropped returns the deliveries that found no reader in time.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// ProcessEncoded records the call.
func (r *Recorder) ProcessEncoded(data []byte) engine.Result {
	res := r.record(Call{Name: engine.CallEncoded, DataLen: len(data)},
		engine.Result{Code: 0, Phrase: "OK", JSON: r.ProcessJSON, NumFaces: 1})
	if res.IsOK() {
		r.deliver(res)
	}
	return res
}

// RequestRuntimeLicenseKey records the call.
func (r *Recorder) RequestRuntimeLicenseKey(raw bool) engine.Result {
	payload := `{"key":"RUNTIME-KEY"}`
	if raw {
		payload = "RUNTIME-KEY"
	}
	return r.record(Call{Name: engine.CallRuntimeKey, Raw: raw}, engine.Result{Code: 0, Phrase: "OK", JSON: payload})
}

// DeInit records the call and closes the delivery channel.
func (r *Recorder) DeInit() engine.Result {
	res := r.record(Call{Name: engine.CallDeInit}, engine.OK())
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results != nil {
		close(r.results)
		r.results = nil
	}
	return res
}

// Results returns the delivery channel opened by a parallel Init.
func (r *Recorder) Results() <-chan engine.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		return nil
	}
	return r.results
}

var (
	_ engine.Engine      = (*Recorder)(nil)
	_ engine.DropCounter = (*Recorder)(nil)
)
