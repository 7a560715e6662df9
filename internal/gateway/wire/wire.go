// Package wire holds the JSON shapes every gateway procedure speaks. It has
// no dependencies so thin clients can decode results without the store.
package wire

import (
	"encoding/json"
	"errors"
)

// JsonError is the failure shape every procedure returns: {"Error": "..."}.
type JsonError struct {
	Error string
}

// SuccessResponse is returned by procedures without a natural payload.
type SuccessResponse struct {
	Response string
}

func NewJsonError(err error) string {
	if err == nil {
		err = errors.New("unknown error")
	}
	data, _ := json.MarshalIndent(JsonError{Error: err.Error()}, "", "    ")
	return string(data)
}

func NewSuccessResponse(msg string) string {
	data, _ := json.MarshalIndent(SuccessResponse{Response: msg}, "", "    ")
	return string(data)
}

// Encode marshals a procedure result, falling back to a JsonError.
func Encode(v any) string {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return NewJsonError(err)
	}
	return string(data)
}

// ErrorOf extracts the Error field of a procedure result. It returns ""
// for success payloads, including lists and the literal "null".
func ErrorOf(result string) string {
	var out struct {
		Error *string
	}
	if err := json.Unmarshal([]byte(result), &out); err != nil || out.Error == nil {
		return ""
	}
	return *out.Error
}
