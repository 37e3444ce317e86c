// Package shutdown coordinates graceful shutdown of concurrently running workers.
//
// # Overview
//
// A Coordinator starts every registered Worker in its own goroutine, then
// blocks the caller in Wait until an OS signal (SIGINT, SIGTERM by default)
// arrives. On the signal it closes every worker's stop channel at once and
// collects outcomes until all workers have reported or the shutdown timeout
// fires. Every failure, and the timeout, end up in one list returned to the
// caller.
//
// # Architecture
//
//	 SIGINT / SIGTERM / Trigger()
//	            │
//	            ▼
//	┌────────────────────────┐   close(stop)   ┌──────────┐
//	│      Coordinator       │ ───────────────▶│ Worker A │──┐
//	│                        │ ───────────────▶│ Worker B │──┤ outcome
//	│  collect until all     │ ───────────────▶│ Worker C │──┤
//	│  report or timeout     │◀────────────────────────────────┘
//	└────────────────────────┘
//	            │
//	            ▼
//	   []error (failures, then at most one *TimeoutError)
//
// # Usage
//
//	coord, err := shutdown.NewCoordinator(shutdown.Config{
//	    Timeout: 10 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err) // *SignalError: signals could not be subscribed
//	}
//
//	coord.Register(server).Register(consumer)
//
//	errs := coord.Wait()
//	for _, err := range errs {
//	    log.Println(err)
//	}
//	if len(errs) > 0 {
//	    os.Exit(1)
//	}
//
// Implementing a worker:
//
//	type Consumer struct{ queue chan Job }
//
//	func (c *Consumer) ID() string { return "consumer" }
//
//	func (c *Consumer) Run(stop <-chan struct{}) error {
//	    for {
//	        select {
//	        case <-stop:
//	            return c.flush()
//	        case job := <-c.queue:
//	            job.Do()
//	        }
//	    }
//	}
//
// Context-based code can use ContextWorker or Group instead.
//
// # Timeout
//
// The timeout is one budget for the whole cohort, starting at the stop
// broadcast. When it fires a single *TimeoutError records how many workers
// had not reported, and Wait returns right away. Stragglers are not killed:
// their goroutines keep running and their late outcome is dropped.
//
// # Lifetime
//
// A Coordinator serves exactly one shutdown cycle. The signal listener it
// starts is never torn down; it lives as long as the process.
package shutdown
