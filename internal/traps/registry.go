// SPDX-License-Identifier: MPL-2.0

package traps

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/invowk/procutil/pkg/sigspec"

	"github.com/eapache/queue"
)

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("trap registry closed")

type (
	// HandlerFunc receives the delivered signal and its canonical name.
	// Signals without a name get "unnamed N".
	HandlerFunc func(sig syscall.Signal, name string)

	// Notifier abstracts signal registration so tests can deliver
	// signals without raising them.
	Notifier interface {
		Notify(c chan<- os.Signal, sig ...os.Signal)
		Stop(c chan<- os.Signal)
	}

	// Handle identifies one registration returned by Add.
	Handle struct {
		sigs []syscall.Signal
		fn   HandlerFunc
	}

	// Registry multiplexes signal deliveries to registered handlers.
	Registry struct {
		notifier Notifier

		mu       sync.Mutex
		handlers map[syscall.Signal][]*Handle
		chans    map[syscall.Signal]chan os.Signal
		pending  *queue.Queue
		closed   bool

		wake chan struct{}
		done chan struct{}
		wg   sync.WaitGroup
	}

	osNotifier struct{}
)

func (osNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }

func (osNotifier) Stop(c chan<- os.Signal) { signal.Stop(c) }

// NewRegistry returns a Registry wired to os/signal.
func NewRegistry() *Registry {
	return NewRegistryWithNotifier(osNotifier{})
}

// NewRegistryWithNotifier returns a Registry that registers through n.
func NewRegistryWithNotifier(n Notifier) *Registry {
	r := &Registry{
		notifier: n,
		handlers: make(map[syscall.Signal][]*Handle),
		chans:    make(map[syscall.Signal]chan os.Signal),
		pending:  queue.New(),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	r.wg.Add(1)
	go r.dispatch()
	return r
}

// Add registers fn for every signal in specs. Either all specs resolve and
// fn is registered for each, or nothing is registered.
func (r *Registry) Add(specs []sigspec.Spec, fn HandlerFunc) (*Handle, error) {
	sigs, err := sigspec.ResolveAll(specs)
	if err != nil {
		return nil, err
	}
	slices.Sort(sigs)
	sigs = slices.Compact(sigs)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	h := &Handle{sigs: sigs, fn: fn}
	for _, sig := range sigs {
		if len(r.handlers[sig]) == 0 {
			r.install(sig)
		}
		r.handlers[sig] = append(r.handlers[sig], h)
	}
	return h, nil
}

// Remove unregisters h. Signals left without handlers get their previous
// delivery behavior back. Removing a handle twice is a no-op.
func (r *Registry) Remove(h *Handle) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sig := range h.sigs {
		hs := r.handlers[sig]
		idx := slices.Index(hs, h)
		if idx < 0 {
			continue
		}
		hs = slices.Delete(hs, idx, idx+1)
		if len(hs) > 0 {
			r.handlers[sig] = hs
			continue
		}
		delete(r.handlers, sig)
		r.uninstall(sig)
	}
}

// WithTrap registers fn for specs while body runs and removes it on every
// return path, including panics.
func (r *Registry) WithTrap(specs []sigspec.Spec, fn HandlerFunc, body func() error) error {
	h, err := r.Add(specs, fn)
	if err != nil {
		return err
	}
	defer r.Remove(h)
	return body()
}

// Trapped returns the signals that currently have at least one handler.
func (r *Registry) Trapped() []syscall.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	sigs := make([]syscall.Signal, 0, len(r.handlers))
	for sig := range r.handlers {
		sigs = append(sigs, sig)
	}
	slices.Sort(sigs)
	return sigs
}

// Close removes every handler and stops the dispatcher. Deliveries still
// queued are dropped.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for sig := range r.handlers {
		r.uninstall(sig)
	}
	clear(r.handlers)
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()
}

// install starts forwarding sig into the pending queue. r.mu must be held.
func (r *Registry) install(sig syscall.Signal) {
	ch := make(chan os.Signal, 8)
	r.chans[sig] = ch
	r.notifier.Notify(ch, sig)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for s := range ch {
			r.enqueue(s)
		}
	}()
}

// uninstall stops forwarding sig. r.mu must be held.
func (r *Registry) uninstall(sig syscall.Signal) {
	ch, ok := r.chans[sig]
	if !ok {
		return
	}
	delete(r.chans, sig)
	r.notifier.Stop(ch)
	// Stop guarantees no further sends, so closing ends the forwarder.
	close(ch)
}

func (r *Registry) enqueue(s os.Signal) {
	sig, ok := s.(syscall.Signal)
	if !ok {
		return
	}
	r.mu.Lock()
	r.pending.Add(sig)
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Registry) dispatch() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case <-r.wake:
		}
		for {
			sig, hs, ok := r.next()
			if !ok {
				break
			}
			name, named := sigspec.NameOf(sig)
			if !named {
				name = fmt.Sprintf("unnamed %d", int(sig))
			}
			for _, h := range hs {
				h.fn(sig, name)
			}
		}
	}
}

// next pops one delivery and snapshots its handlers.
func (r *Registry) next() (syscall.Signal, []*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.pending.Length() > 0 {
		sig := r.pending.Remove().(syscall.Signal)
		hs := r.handlers[sig]
		if len(hs) == 0 {
			slog.Debug("dropping signal with no handlers", "signal", sig)
			continue
		}
		return sig, slices.Clone(hs), true
	}
	return 0, nil, false
}
