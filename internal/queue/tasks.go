package queue

const (
	TypeAudiobookSynthesize = "audiobook:synthesize"
)

// AudiobookSynthesizePayload identifies the job to process; all parameters
// live on the job row.
type AudiobookSynthesizePayload struct {
	JobID string `json:"job_id"`
}
