package model

type TranscriptRequest struct {
	VideoID string `json:"video_id"`
}

type TranscriptResponse struct {
	Transcript string `json:"transcript"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// PipeResponse is one output line of the pipe protocol. Exactly one field is
// set per response; Transcript is a pointer so an empty transcript still
// serializes as {"transcript": ""}.
type PipeResponse struct {
	Transcript *string `json:"transcript,omitempty"`
	Error      string  `json:"error,omitempty"`
}
