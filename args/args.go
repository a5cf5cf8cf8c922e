// Package args - Parsing of "--key value" command-line pairs.
//
// Arguments always come in pairs. Keys must start with "--", values are taken verbatim.
package args

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrOddArgs is returned when the arguments cannot be split into key/value pairs.
	ErrOddArgs = errors.New("Number of args must be even")
	// ErrInvalidKey is returned when a key does not start with "--".
	ErrInvalidKey = errors.New("Invalid key")
	// ErrMissing is returned when a required key is absent.
	ErrMissing = errors.New("required")
)

// Error is a command line error whose message names the offending value.
// It matches its sentinel with errors.Is.
type Error struct {
	Err     error
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the sentinel.
func (e *Error) Unwrap() error {
	return e.Err
}

// Well known keys.
const (
	KeyImage     = "--image"
	KeyAssets    = "--assets"
	KeyTokenData = "--tokendata"
	KeyTokenFile = "--tokenfile"
	KeyParallel  = "--parallel"
	KeyConfig    = "--config"
	KeyLogLevel  = "--loglevel"
	KeyLoops     = "--loops"
	KeyJSON      = "--json"
	KeyType      = "--type"
	KeyVideo     = "--video"
	KeyOutput    = "--output"
	KeyWindow    = "--window"
)

// Args holds the parsed key/value pairs.
type Args map[string]string

// Parse splits argv (without the program name) into key/value pairs.
//
// Arguments:
//   - argv: The raw arguments.
//
// Returns:
//   - Args: The pairs, later duplicates overwrite earlier ones.
//   - error: ErrOddArgs or ErrInvalidKey.
func Parse(argv []string) (Args, error) {
	if len(argv)&1 != 0 {
		return nil, &Error{Err: ErrOddArgs, Message: fmt.Sprintf("%s: %d", ErrOddArgs, len(argv))}
	}

	values := make(Args, len(argv)/2)
	for i := 0; i < len(argv); i += 2 {
		key := argv[i]
		if len(key) < 2 || !strings.HasPrefix(key, "--") {
			return nil, &Error{Err: ErrInvalidKey, Message: fmt.Sprintf("%s: %s", ErrInvalidKey, key)}
		}
		values[key] = argv[i+1]
	}
	return values, nil
}

// Has reports whether key was provided.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Get returns the value of key or an empty string.
func (a Args) Get(key string) string {
	return a[key]
}

// Require returns the value of key or an error naming it.
func (a Args) Require(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", &Error{Err: ErrMissing, Message: key + " " + ErrMissing.Error()}
	}
	return v, nil
}

// Path returns the value of key as a path using forward slashes on Windows.
func (a Args) Path(key string) string {
	v := a[key]
	if runtime.GOOS == "windows" {
		v = strings.ReplaceAll(v, `\`, "/")
	}
	return v
}

// Bool returns true only when key is set to "true", def when key is absent.
func (a Args) Bool(key string, def bool) bool {
	v, ok := a[key]
	if !ok {
		return def
	}
	return v == "true"
}

// Int parses the value of key, returning def when key is absent.
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", key)
	}
	return n, nil
}

// Keys returns the provided keys in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the pairs, hiding license token data.
func (a Args) String() string {
	parts := make([]string, 0, len(a))
	for _, k := range a.Keys() {
		v := a[k]
		if k == KeyTokenData && v != "" {
			v = "***"
		}
		parts = append(parts, fmt.Sprintf("%s %s", k, v))
	}
	return strings.Join(parts, " ")
}
