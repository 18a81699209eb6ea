package kb

// FailureReason is a stable code for why a chat query failed. The UI renders
// every failure the same way; the reason exists for logging and diagnostics.
type FailureReason string

const (
	// ReasonNetwork covers unreachable hosts, timeouts, and interrupted transfers.
	ReasonNetwork FailureReason = "network_failure"

	// ReasonServerStatus covers non-2xx responses from the query service.
	ReasonServerStatus FailureReason = "server_error"

	// ReasonBadPayload covers response bodies that do not decode into the
	// expected shape.
	ReasonBadPayload FailureReason = "malformed_response"
)

// Failure describes a failed chat query.
type Failure struct {
	Reason FailureReason
	Err    error // underlying cause, for logs only
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Reason)
	}
	return string(f.Reason) + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// Result is the outcome of Client.Query. Exactly one of the three outcomes
// holds: Rejected for input that was empty after trimming (no request was
// made), Response on success, Failure otherwise. Query never returns an
// error; this union is the whole contract.
type Result struct {
	Rejected bool
	Response *QueryResponse
	Failure  *Failure
}
