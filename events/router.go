package events

// Handler processes specific event types
type Handler interface {
	// HandleEvent processes a single event
	// Called synchronously during dispatch
	HandleEvent(event GameEvent)

	// EventTypes returns the event types this handler processes
	// The router uses this for registration
	EventTypes() []EventType
}

// funcHandler adapts a plain function to Handler
type funcHandler struct {
	fn    func(GameEvent)
	types []EventType
}

func (h funcHandler) HandleEvent(event GameEvent) { h.fn(event) }
func (h funcHandler) EventTypes() []EventType     { return h.types }

// HandlerFunc wraps fn as a Handler for the given types
func HandlerFunc(fn func(GameEvent), types ...EventType) Handler {
	return funcHandler{fn: fn, types: types}
}

// Router dispatches events to registered handlers
//
// Architecture:
//   - Single-threaded dispatch on the emitting goroutine
//   - Multiple handlers can register for the same event type
//   - Handlers are invoked in registration order
//   - Hold buffers events until Flush so compound transitions publish atomically
//   - Events emitted from inside a handler are queued behind the current one
type Router struct {
	handlers    map[EventType][]Handler
	pending     []GameEvent
	held        int
	dispatching bool
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{
		handlers: make(map[EventType][]Handler),
	}
}

// Register adds a handler for its declared event types
func (r *Router) Register(handler Handler) {
	for _, t := range handler.EventTypes() {
		r.handlers[t] = append(r.handlers[t], handler)
	}
}

// Emit dispatches event now, or queues it while held or dispatching
func (r *Router) Emit(event GameEvent) {
	r.pending = append(r.pending, event)
	if r.held > 0 || r.dispatching {
		return
	}
	r.drain()
}

// Hold defers dispatch until the matching Flush, calls nest
func (r *Router) Hold() {
	r.held++
}

// Flush releases one Hold and dispatches pending events in FIFO order once fully released
func (r *Router) Flush() {
	if r.held > 0 {
		r.held--
	}
	if r.held == 0 && !r.dispatching {
		r.drain()
	}
}

// Discard drops all pending events without dispatching them
func (r *Router) Discard() {
	r.pending = r.pending[:0]
}

func (r *Router) drain() {
	r.dispatching = true
	defer func() { r.dispatching = false }()

	for len(r.pending) > 0 {
		ev := r.pending[0]
		r.pending = r.pending[1:]
		for _, h := range r.handlers[ev.Type] {
			h.HandleEvent(ev)
		}
	}
	r.pending = r.pending[:0]
}

// Pending returns the number of queued, undispatched events
func (r *Router) Pending() int {
	return len(r.pending)
}

// HasHandlers returns true if any handlers are registered for the given type
func (r *Router) HasHandlers(t EventType) bool {
	return len(r.handlers[t]) > 0
}

// HandlerCount returns the number of handlers registered for the given type
func (r *Router) HandlerCount(t EventType) int {
	return len(r.handlers[t])
}
