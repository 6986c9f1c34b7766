package pipeline

// Reason classifies why a pipeline run failed.
type Reason string

const (
	// ReasonRenderFailed means the frame renderer or GIF encoder rejected
	// the input.
	ReasonRenderFailed Reason = "render_failed"

	// ReasonUploadFailed means the upload call failed or its response
	// matched no known shape.
	ReasonUploadFailed Reason = "upload_failed"

	// ReasonUploadInvalidURL means the host accepted the upload but
	// returned a syntactically invalid URL.
	ReasonUploadInvalidURL Reason = "upload_invalid_url"

	// ReasonTimedOut means the overall run deadline elapsed before all
	// stages completed.
	ReasonTimedOut Reason = "timed_out"

	// ReasonInternal means an unexpected panic was recovered during the run.
	ReasonInternal Reason = "internal_error"
)

// Outcome is the result of one pipeline run. Exactly one outcome is ever
// delivered to the transport per request token; outcomes for superseded
// tokens are discarded by the coalescer and never observed.
type Outcome struct {
	// OK reports whether the run produced a usable artifact.
	OK bool

	// Reason is set when OK is false.
	Reason Reason

	// DisplayText is the translated (or passed-through) text.
	DisplayText string

	// LanguageName is the display name of the target language.
	LanguageName string

	// ArtifactURL is the canonical URL of the uploaded animation.
	ArtifactURL string

	// Degraded reports that translation fell back to the original text.
	// The run still counts as a success.
	Degraded bool
}

// failure builds a failed Outcome with the given reason.
func failure(reason Reason) Outcome {
	return Outcome{OK: false, Reason: reason}
}
