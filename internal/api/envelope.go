package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is the wire version of the response envelope. Bump only
// with a coordinated client release.
const envelopeVersion = 1

// envelope is the uniform JSON wrapper around every API response. Success
// responses carry data; error responses carry a flat error string plus the
// structured code/message/details trio when the error is a domain error.
type envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the envelope. Registered
// on the huma config so handlers return plain output structs.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		env := &envelope{
			V:     envelopeVersion,
			Error: apiErr.Message,
		}
		if apiErr.Code != "" {
			env.Code = apiErr.Code
			env.Message = apiErr.Message
			env.Details = apiErr.Details
		}
		return env, nil
	}

	return &envelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
