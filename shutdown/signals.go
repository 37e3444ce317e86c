package shutdown

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
)

// triggerBuffer bounds the queue between the signal listener and Wait.
// Pushes beyond it are dropped; only the first one matters.
const triggerBuffer = 100

// SignalSource subscribes a channel to OS signals.
// It exists so tests can inject fakes.
type SignalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
}

// osSignalSource delegates to os/signal.
type osSignalSource struct{}

func (osSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

// DefaultSignals returns the signals that trigger shutdown when none are
// configured. The slice is fresh on every call.
func DefaultSignals() []os.Signal {
	out := make([]os.Signal, len(defaultSignals))
	copy(out, defaultSignals)
	return out
}

// ParseSignal maps a signal name such as "SIGTERM", "term" or "interrupt"
// to an os.Signal supported on this platform.
func ParseSignal(name string) (os.Signal, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "INTERRUPT" {
		return os.Interrupt, nil
	}
	key = strings.TrimPrefix(key, "SIG")
	if sig, ok := signalNames[key]; ok {
		return sig, nil
	}
	return nil, fmt.Errorf("unknown signal %q", name)
}

// ParseSignals parses a list of names. Entries may themselves be
// comma-separated, as they are when read from an environment variable.
func ParseSignals(names []string) ([]os.Signal, error) {
	var out []os.Signal
	for _, entry := range names {
		for _, name := range strings.Split(entry, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			sig, err := ParseSignal(name)
			if err != nil {
				return nil, err
			}
			out = append(out, sig)
		}
	}
	return out, nil
}

// listen subscribes to sigs and returns the trigger queue fed by a
// listener goroutine. The goroutine lives as long as the process; it only
// exits, closing the trigger, if the source closes the channel it was given.
func listen(src SignalSource, sigs []os.Signal) (<-chan struct{}, error) {
	for _, sig := range sigs {
		if sig == nil {
			return nil, &SignalError{Signals: sigs, Err: errors.New("nil signal in set")}
		}
	}

	raw := make(chan os.Signal, 1)
	if err := subscribe(src, raw, sigs); err != nil {
		return nil, &SignalError{Signals: sigs, Err: err}
	}

	trigger := make(chan struct{}, triggerBuffer)
	go func() {
		defer close(trigger)
		for range raw {
			select {
			case trigger <- struct{}{}:
			default:
			}
		}
	}()

	return trigger, nil
}

// subscribe turns a panicking source into an error.
func subscribe(src SignalSource, c chan<- os.Signal, sigs []os.Signal) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("signal source panic: %v", r)
		}
	}()

	src.Notify(c, sigs...)
	return nil
}
