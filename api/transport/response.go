package transport

import (
	"encoding/json"

	"github.com/servicepulse/datalayer/domain"
)

// Envelope is the standard response wrapper of the host API. Error codes
// reuse the store layer's taxonomy so clients see one vocabulary end to end.
type Envelope struct {
	Status string           `json:"status"`
	Code   domain.ErrorCode `json:"code,omitempty"`
	Data   any              `json:"data,omitempty"`
	Error  any              `json:"error,omitempty"`
	Meta   any              `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data, meta any) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code domain.ErrorCode, err, meta any) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
