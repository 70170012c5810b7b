package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DeanBeanBEER-WARE/interact/internal/dom"
	"github.com/DeanBeanBEER-WARE/interact/internal/observe"
	"github.com/DeanBeanBEER-WARE/interact/internal/rule"
	"github.com/DeanBeanBEER-WARE/interact/internal/schedule"
)

// DefaultFrameInterval approximates a 60Hz rendering cadence for the
// live Run loop. Simulated drivers call Frame directly instead.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrNoDocument is returned when the engine is constructed without a
// host document.
var ErrNoDocument = errors.New("engine requires a host document")

// Mutation describes one executed mutation for observers (trace capture,
// the journal). Element is nil when a pass resolved no targets.
type Mutation struct {
	Seq     int64
	Session string
	RuleID  string
	Element dom.Element
	Action  rule.Action
	Labels  []string
}

// Observer receives every mutation synchronously within the pass.
type Observer func(Mutation)

// Option configures the engine at construction.
type Option func(*Engine)

// WithDefaults overrides the normalizer's default configuration. There
// is no process-wide default state; this value is the only source.
func WithDefaults(d rule.Defaults) Option {
	return func(e *Engine) { e.defaults = d }
}

// WithOnMutate sets an engine-level post-mutation callback, invoked
// after any per-rule callback.
func WithOnMutate(fn rule.MutateFunc) Option {
	return func(e *Engine) { e.onMutate = fn }
}

// WithObserver registers a mutation observer.
func WithObserver(fn Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, fn) }
}

// WithVisibilitySource overrides the visibility source. By default the
// engine uses the document if it implements dom.VisibilitySource.
func WithVisibilitySource(src dom.VisibilitySource) Option {
	return func(e *Engine) { e.vis = src }
}

// WithTokenGenerator overrides the session token generator. Tests pass
// NewFixedGenerator for deterministic traces.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithStartTime pins the scheduler's logical start time. Defaults to
// time.Now; simulations pin it for reproducible timer math.
func WithStartTime(t time.Time) Option {
	return func(e *Engine) { e.start = t }
}

// WithLogger overrides the engine's logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine owns the rules and the observer pool for its lifetime. It never
// owns the watched elements - only references and labels them.
type Engine struct {
	doc   dom.Document
	vis   dom.VisibilitySource
	sched *schedule.Scheduler
	pool  *observe.Pool
	clock *Clock
	queue *eventQueue
	log   *slog.Logger

	defaults  rule.Defaults
	tokens    TokenGenerator
	session   string
	start     time.Time
	onMutate  rule.MutateFunc
	observers []Observer

	rules    []rule.Rule
	problems []rule.Problem

	bindings  []*binding
	byTrigger map[string][]*binding
	ready     bool
}

// New builds an engine from an ordered declaration list.
//
// Fatal conditions: a nil declaration list (the top-level argument was
// not a list) and a nil document. Everything else degrades per rule with
// diagnostics available from Problems.
//
// Setup - expansion, trigger resolution, pool registration - runs
// synchronously if the document is already ready, otherwise it is
// deferred to the document's readiness signal.
func New(decls []rule.Declaration, doc dom.Document, opts ...Option) (*Engine, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}

	e := &Engine{
		doc:       doc,
		clock:     NewClock(),
		queue:     newEventQueue(),
		defaults:  rule.DefaultConfig(),
		tokens:    UUIDv7Generator{},
		start:     time.Now(),
		log:       slog.Default(),
		byTrigger: make(map[string][]*binding),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.vis == nil {
		if src, ok := doc.(dom.VisibilitySource); ok {
			e.vis = src
		}
	}

	e.sched = schedule.NewScheduler(e.start)
	e.session = e.tokens.Generate()
	if e.vis != nil {
		e.pool = observe.NewPool(e.vis)
	}

	rules, problems, err := rule.Normalize(decls, e.defaults)
	if err != nil {
		return nil, fmt.Errorf("normalize declarations: %w", err)
	}
	e.rules = rules
	e.problems = problems
	for _, p := range problems {
		e.log.Warn("rule diagnostic", "code", p.Code, "rule", p.Rule, "field", p.Field, "detail", p.Message)
	}

	if doc.Ready() {
		e.setup()
	} else {
		doc.OnReady(e.setup)
	}
	return e, nil
}

// setup expands rules into bindings and wires each binding's trigger.
// Runs exactly once, on the event-loop thread.
func (e *Engine) setup() {
	if e.ready {
		return
	}
	e.ready = true

	expanded, problems := rule.Expand(e.rules, e.doc)
	e.problems = append(e.problems, problems...)
	for _, p := range problems {
		e.log.Warn("expansion diagnostic", "code", p.Code, "rule", p.Rule, "detail", p.Message)
	}

	for i := range expanded {
		e.bind(&expanded[i])
	}
	e.log.Info("engine ready",
		"session", e.session,
		"rules", len(e.rules),
		"bindings", len(e.bindings),
		"watchers", e.poolSize(),
	)
}

// bind resolves one expanded rule's trigger element and hooks it to its
// trigger source. A rule whose trigger selector matches nothing is
// skipped with a diagnostic only; siblings are unaffected.
func (e *Engine) bind(er *rule.ExpandedRule) {
	b := &binding{
		eng:  e,
		rule: *er,
		deb:  schedule.NewDebounce(e.sched, er.Debounce),
	}

	b.trigger = er.Trigger
	if b.trigger == nil {
		if er.TriggerSelector == "" {
			e.skip(er, rule.ErrUnresolvedTrigger, "no trigger selector declared")
			return
		}
		matches := e.doc.Query(er.TriggerSelector)
		if len(matches) == 0 {
			e.skip(er, rule.ErrUnresolvedTrigger,
				fmt.Sprintf("trigger selector %q matched nothing", er.TriggerSelector))
			return
		}
		b.trigger = matches[0]
	}

	switch er.Kind {
	case rule.TriggerActivate, rule.TriggerHover:
		id := b.trigger.ID()
		e.byTrigger[id] = append(e.byTrigger[id], b)
	case rule.TriggerVisibility:
		if e.pool == nil {
			e.skip(er, rule.ErrUnresolvedTrigger, "host provides no visibility source")
			return
		}
		b.watcher = e.pool.GetOrCreate(b.thresholds())
		b.watcher.Register(b.trigger, b)
	}
	e.bindings = append(e.bindings, b)
}

func (e *Engine) skip(er *rule.ExpandedRule, code, detail string) {
	p := rule.Problem{
		Field:    "triggerSelector",
		Code:     code,
		Severity: rule.SeverityError,
		Message:  fmt.Sprintf("binding %s skipped: %s", er.ID, detail),
	}
	e.problems = append(e.problems, p)
	e.log.Warn("binding skipped", "binding", er.ID, "code", code, "detail", detail)
}

// Activate reports an activation gesture on el. Event-loop thread only;
// use Enqueue from other goroutines.
func (e *Engine) Activate(el dom.Element) {
	for _, b := range e.triggered(el, rule.TriggerActivate) {
		b.activate()
	}
}

// HoverEnter reports the pointer entering el.
func (e *Engine) HoverEnter(el dom.Element) {
	for _, b := range e.triggered(el, rule.TriggerHover) {
		b.hoverEnter()
	}
}

// HoverLeave reports the pointer leaving el.
func (e *Engine) HoverLeave(el dom.Element) {
	for _, b := range e.triggered(el, rule.TriggerHover) {
		b.hoverLeave()
	}
}

func (e *Engine) triggered(el dom.Element, kind rule.TriggerKind) []*binding {
	if el == nil {
		return nil
	}
	var out []*binding
	for _, b := range e.byTrigger[el.ID()] {
		if b.rule.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// Advance moves logical time forward, firing due debounce timers.
func (e *Engine) Advance(d time.Duration) {
	e.sched.Advance(d)
}

// Frame runs one rendering pass: every pending frame-aligned mutation
// executes exactly once. Returns the number of passes run.
func (e *Engine) Frame() int {
	return e.sched.Frame()
}

// Enqueue submits a trigger event from any goroutine for the Run loop.
// Returns false after Stop.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// Run drains the event queue on a single goroutine, advancing logical
// time and running a rendering pass on every frame tick. Blocks until
// the context is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context, frameInterval time.Duration) error {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	e.log.Info("engine loop starting", "session", e.session, "frame_interval", frameInterval)
	for {
		if ev, ok := e.queue.TryDequeue(); ok {
			e.dispatchEvent(ev)
			continue
		}

		select {
		case <-ctx.Done():
			e.log.Info("engine loop stopping", "reason", "context cancelled")
			e.queue.Close()
			return ctx.Err()
		case <-ticker.C:
			e.Advance(frameInterval)
			e.Frame()
		case <-e.queue.Wait():
			if e.queue.Len() == 0 {
				e.log.Info("engine loop stopping", "reason", "queue closed")
				return nil
			}
		}
	}
}

// Stop closes the event queue, which ends a blocked Run loop.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) dispatchEvent(ev Event) {
	switch ev.Type {
	case EventActivate:
		e.Activate(ev.Element)
	case EventHoverEnter:
		e.HoverEnter(ev.Element)
	case EventHoverLeave:
		e.HoverLeave(ev.Element)
	default:
		e.log.Warn("unknown event type", "type", int(ev.Type))
	}
}

// Problems returns every diagnostic collected so far: normalization
// warnings, expansion errors, and skipped bindings.
func (e *Engine) Problems() []rule.Problem {
	return e.problems
}

// Session returns the engine's session token.
func (e *Engine) Session() string {
	return e.session
}

// Ready reports whether setup has run.
func (e *Engine) Ready() bool {
	return e.ready
}

// Bindings returns the number of live bindings. Test hook.
func (e *Engine) Bindings() int {
	return len(e.bindings)
}

// PoolSize returns the number of live shared watchers. Test hook.
func (e *Engine) PoolSize() int {
	return e.poolSize()
}

func (e *Engine) poolSize() int {
	if e.pool == nil {
		return 0
	}
	return e.pool.Size()
}
