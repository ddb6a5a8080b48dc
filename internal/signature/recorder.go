package signature

// Outcome labels the result of one pass through the verifier.
type Outcome string

const (
	// OutcomeMissing means the header was absent or too short to hold a digest
	OutcomeMissing Outcome = "missing"
	// OutcomeValid means the digest matched
	OutcomeValid Outcome = "valid"
	// OutcomeInvalid means a digest was present but did not verify
	OutcomeInvalid Outcome = "invalid"
	// OutcomeRejected means the request was answered with 400
	OutcomeRejected Outcome = "rejected"
)

// Recorder receives verification events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordOutcome(outcome Outcome)
	RecordBodySize(bytes int)
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) RecordOutcome(Outcome) {}
func (NopRecorder) RecordBodySize(int)    {}
