// Package script runs the inline event handlers of restored controls so pages
// that react to user input see the same events a person typing would cause.
package script

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"github.com/thesavant42/formkeeper/internal/dom"
	"github.com/thesavant42/formkeeper/internal/formstate"
)

// DefaultTimeout bounds a single handler run
const DefaultTimeout = time.Second

// ErrTimeout is returned when a handler runs past the dispatcher's timeout
var ErrTimeout = errors.New("event handler timed out")

// Dispatcher executes on<event> handler attributes with goja. It is safe for
// concurrent use; handlers run one at a time on a shared runtime.
type Dispatcher struct {
	logger  *log.Logger
	timeout time.Duration

	mu       sync.Mutex
	vm       *goja.Runtime
	programs map[string]*goja.Program
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger routes console.log output and handler failures to logger
func WithLogger(logger *log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTimeout sets how long one handler may run before it is interrupted
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher returns a dispatcher with its own JavaScript runtime
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		timeout:  DefaultTimeout,
		programs: make(map[string]*goja.Program),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.vm = goja.New()
	d.installConsole()
	return d
}

// Dispatch runs the handler attribute for ev.Type on the event target. A
// target without a handler is a no-op.
func (d *Dispatcher) Dispatch(ev formstate.Event) error {
	attr := "on" + strings.ToLower(ev.Type)
	if !dom.HasAttr(ev.Target, attr) {
		return nil
	}
	source := dom.Attr(ev.Target, attr)
	if strings.TrimSpace(source) == "" {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	program, err := d.compile(source)
	if err != nil {
		return fmt.Errorf("failed to compile %s handler for %s: %w", attr, ev.Key, err)
	}

	if err := d.run(program, ev); err != nil {
		return fmt.Errorf("%s handler for %s: %w", attr, ev.Key, err)
	}
	return nil
}

// watchdog interrupts vm when a handler overruns. Once stopped it never
// interrupts, even if its timer already fired.
type watchdog struct {
	vm    *goja.Runtime
	timer *time.Timer

	mu   sync.Mutex
	done bool
}

func startWatchdog(vm *goja.Runtime, timeout time.Duration) *watchdog {
	w := &watchdog{vm: vm}
	w.timer = time.AfterFunc(timeout, w.fire)
	return w
}

func (w *watchdog) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.done {
		w.vm.Interrupt(ErrTimeout)
	}
}

func (w *watchdog) stop() {
	w.mu.Lock()
	w.done = true
	w.mu.Unlock()
	w.timer.Stop()
	w.vm.ClearInterrupt()
}

// CachedPrograms returns how many distinct handler sources have been compiled
func (d *Dispatcher) CachedPrograms() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.programs)
}

func (d *Dispatcher) compile(source string) (*goja.Program, error) {
	if program, ok := d.programs[source]; ok {
		return program, nil
	}
	program, err := goja.Compile("", wrapHandler(source), false)
	if err != nil {
		return nil, err
	}
	d.programs[source] = program
	return program, nil
}

func (d *Dispatcher) run(program *goja.Program, ev formstate.Event) error {
	wd := startWatchdog(d.vm, d.timeout)
	defer wd.stop()

	value, err := d.vm.RunProgram(program)
	if err != nil {
		return unwrapInterrupt(err)
	}
	fn, ok := goja.AssertFunction(value)
	if !ok {
		return fmt.Errorf("handler did not compile to a function")
	}

	if err := d.vm.Set("document", wrapDocument(d.vm, ev.Target)); err != nil {
		return err
	}

	event := d.vm.NewObject()
	_ = event.Set("type", ev.Type)
	_ = event.Set("key", ev.Key)
	_ = event.Set("synthetic", true)

	if _, err := fn(wrapElement(d.vm, ev.Target), event); err != nil {
		return unwrapInterrupt(err)
	}
	return nil
}

func (d *Dispatcher) installConsole() {
	console := d.vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		if d.logger != nil {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			d.logger.Debug("Handler console", "msg", strings.Join(parts, " "))
		}
		return goja.Undefined()
	})
	_ = d.vm.Set("console", console)
}

// wrapHandler turns attribute source into a function expression taking the event
func wrapHandler(source string) string {
	return fmt.Sprintf("(function(event) {\n%s\n})", source)
}

func unwrapInterrupt(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if v, ok := interrupted.Value().(error); ok {
			return v
		}
		return ErrTimeout
	}
	return err
}
