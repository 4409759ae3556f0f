// SPDX-License-Identifier: MPL-2.0

package sigspec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Prefix is the conventional prefix of signal names ("SIGTERM").
const Prefix = "SIG"

const (
	// KindNumber marks a Spec holding a signal number.
	KindNumber Kind = iota + 1
	// KindName marks a Spec holding a signal name.
	KindName
)

// ErrInvalidSignalSpec is the sentinel error wrapped by InvalidSignalSpecError.
var ErrInvalidSignalSpec = errors.New("invalid signal")

type (
	// Kind identifies which variant a Spec holds.
	// The zero value marks an empty Spec, which never resolves.
	Kind uint8

	// Spec is a signal specification: either a number or a name.
	// Construct values with Number, Name or Parse.
	Spec struct {
		kind   Kind
		number int
		name   string
	}

	// InvalidSignalSpecError is returned when a Spec does not resolve to a
	// known signal. It wraps ErrInvalidSignalSpec for errors.Is() compatibility.
	InvalidSignalSpecError struct {
		Spec   Spec
		Reason string
	}

	// Entry is one row of the platform signal table.
	Entry struct {
		Signal      unix.Signal
		Name        string
		Description string
	}
)

// Number returns a Spec for a platform signal number.
func Number(n int) Spec { return Spec{kind: KindNumber, number: n} }

// Name returns a Spec for a signal name, with or without the SIG prefix.
func Name(s string) Spec { return Spec{kind: KindName, name: s} }

// Parse builds a Spec from command-line text: decimal strings become
// numbers, anything else is treated as a name.
func Parse(s string) Spec {
	if n, err := strconv.Atoi(s); err == nil {
		return Number(n)
	}
	return Name(s)
}

// Kind returns the variant held by s.
func (s Spec) Kind() Kind { return s.kind }

// String renders the spec as the user wrote it.
func (s Spec) String() string {
	switch s.kind {
	case KindNumber:
		return strconv.Itoa(s.number)
	case KindName:
		return s.name
	default:
		return "<empty>"
	}
}

// Error implements the error interface for InvalidSignalSpecError.
func (e *InvalidSignalSpecError) Error() string {
	return fmt.Sprintf("invalid signal %q: %s", e.Spec.String(), e.Reason)
}

// Unwrap returns ErrInvalidSignalSpec for errors.Is() compatibility.
func (e *InvalidSignalSpecError) Unwrap() error { return ErrInvalidSignalSpec }

// Resolve maps a Spec to its signal number.
func Resolve(s Spec) (unix.Signal, error) {
	switch s.kind {
	case KindNumber:
		if s.number < 1 || s.number > maxSignal {
			return 0, &InvalidSignalSpecError{Spec: s, Reason: fmt.Sprintf("number out of range 1-%d", maxSignal)}
		}
		return unix.Signal(s.number), nil
	case KindName:
		if sig, ok := lookup(s.name); ok {
			return sig, nil
		}
		return 0, &InvalidSignalSpecError{Spec: s, Reason: "unknown signal name"}
	default:
		return 0, &InvalidSignalSpecError{Spec: s, Reason: "neither a number nor a name"}
	}
}

// ResolveAll resolves every spec in order and fails on the first bad one.
func ResolveAll(specs []Spec) ([]unix.Signal, error) {
	sigs := make([]unix.Signal, 0, len(specs))
	for _, s := range specs {
		sig, err := Resolve(s)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// NameOf returns the canonical name of sig without the SIG prefix.
// The boolean is false when the platform has no name for the number.
func NameOf(sig unix.Signal) (string, bool) {
	name := unix.SignalName(sig)
	if name == "" {
		return "", false
	}
	return strings.TrimPrefix(name, Prefix), true
}

// Normalize resolves s and returns its canonical name. Numbers without a
// name are rejected, since a canonical name is the whole point.
func Normalize(s Spec) (string, error) {
	sig, err := Resolve(s)
	if err != nil {
		return "", err
	}
	name, ok := NameOf(sig)
	if !ok {
		return "", &InvalidSignalSpecError{Spec: s, Reason: "signal has no name"}
	}
	return name, nil
}

// List returns the named signals of this platform ordered by number.
func List() []Entry {
	var entries []Entry
	for n := 1; n <= maxSignal; n++ {
		sig := unix.Signal(n)
		name, ok := NameOf(sig)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Signal: sig, Name: name, Description: sig.String()})
	}
	return entries
}

// TerminationSignals returns the signals conventionally used to ask a
// process to stop.
func TerminationSignals() []Spec {
	return []Spec{Name("TERM"), Name("INT"), Name("HUP"), Name("USR1"), Name("USR2")}
}

func lookup(name string) (unix.Signal, bool) {
	name = strings.TrimPrefix(name, Prefix)
	if name == "" {
		return 0, false
	}
	if sig, ok := aliases[name]; ok {
		return sig, true
	}
	sig := unix.SignalNum(Prefix + name)
	return sig, sig != 0
}
