package harness

// Trace operations.
const (
	OpSet    = "set"
	OpRemove = "remove"
)

// TraceEvent is one physical backend operation.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Op   string `json:"op"` // "set" or "remove"
	Key  string `json:"key"`
	AtMs int64  `json:"at_ms"` // milliseconds since the scenario started
}

// String renders the event as "<op> <key>", the form trace_order uses.
func (e TraceEvent) String() string {
	return e.Op + " " + e.Key
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step and assertion succeeded.
	Pass bool `json:"pass"`

	// Trace holds backend operations in the order they happened.
	Trace []TraceEvent `json:"trace"`

	// Errors holds step and assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
