package harness

// StepTrace records the outcome of one scenario step.
type StepTrace struct {
	Step  int    `json:"step"`
	Op    string `json:"op"`
	Seq   int64  `json:"seq,omitempty"`   // history index of the committed entry
	Error string `json:"error,omitempty"` // error kind or codes when the step failed
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	// Trace has one entry per step, in order.
	Trace []StepTrace `json:"trace"`

	// Errors explains each failure. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// DocumentHash is the hash of the final document.
	DocumentHash string `json:"documentHash"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
