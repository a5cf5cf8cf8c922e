//go:build !fldsdk || !cgo

package engine

// Native stands in for the native engine in builds without the SDK. Every call fails.
type Native struct{}

// New returns an engine whose calls all report ErrNotLinked.
func New() *Native {
	return &Native{}
}

// Linked reports whether the native library is part of this build.
func Linked() bool {
	return false
}

func notLinked() Result {
	return Failure(-1, ErrNotLinked.Error())
}

// Init always fails.
func (n *Native) Init(string, bool) Result { return notLinked() }

// WarmUp always fails.
func (n *Native) WarmUp(ImageType) Result { return notLinked() }

// Process always fails.
func (n *Native) Process(ImageType, []byte, int, int, int, int) Result { return notLinked() }

// ProcessEncoded always fails.
func (n *Native) ProcessEncoded([]byte) Result { return notLinked() }

// Dropped always returns 0.
func (n *Native) Dropped() int { return 0 }

// RequestRuntimeLicenseKey always fails.
func (n *Native) RequestRuntimeLicenseKey(bool) Result { return notLinked() }

// DeInit always fails.
func (n *Native) DeInit() Result { return notLinked() }

// Results is always nil.
func (n *Native) Results() <-chan Result { return nil }
