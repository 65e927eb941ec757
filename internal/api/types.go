package api

import (
	"time"

	"chatshot/internal/classifier"
	"chatshot/internal/label"
	"chatshot/internal/preflight"
)

// MessageNotClassified is shown when the pipeline stopped before producing a verdict.
const MessageNotClassified = "The image could not be classified"

// ClassifyResponse is the verdict for one uploaded image.
type ClassifyResponse struct {
	RequestID    string `json:"request_id"`
	Mode         string `json:"mode,omitempty"`
	Label        string `json:"label"`
	IsChat       bool   `json:"is_chat"`
	Message      string `json:"message"`
	Classified   bool   `json:"classified"`
	ProcessingMS int64  `json:"processing_ms"`
	TextLength   int    `json:"text_length"`
	FailedStage  string `json:"failed_stage,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CheckStatus mirrors a single preflight result.
type CheckStatus struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// StatusResponse summarizes service readiness.
type StatusResponse struct {
	Ready  bool          `json:"ready"`
	Mode   string        `json:"mode"`
	Checks []CheckStatus `json:"checks"`
}

// ErrorResponse is returned for requests rejected before classification.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

// FromResult converts a pipeline result and its error into the wire format.
func FromResult(result classifier.Result, err error) ClassifyResponse {
	resp := ClassifyResponse{
		RequestID:    result.RequestID,
		Mode:         result.Mode,
		Label:        result.Label.Constant(),
		IsChat:       result.Label.IsChat(),
		Classified:   result.Classified && err == nil,
		ProcessingMS: result.Duration.Milliseconds(),
		TextLength:   len([]rune(result.Text)),
		FailedStage:  result.FailedStage,
	}
	if !resp.Classified {
		resp.Label = label.NotChat.Constant()
		resp.IsChat = false
		resp.Message = MessageNotClassified
	} else {
		resp.Message = result.Label.Message()
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// ProcessingTime returns the elapsed pipeline time.
func (r ClassifyResponse) ProcessingTime() time.Duration {
	return time.Duration(r.ProcessingMS) * time.Millisecond
}

// FromPreflight converts readiness checks into the wire format.
func FromPreflight(mode string, results []preflight.Result) StatusResponse {
	checks := make([]CheckStatus, 0, len(results))
	for _, r := range results {
		checks = append(checks, CheckStatus{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return StatusResponse{
		Ready:  preflight.AllPassed(results),
		Mode:   mode,
		Checks: checks,
	}
}
