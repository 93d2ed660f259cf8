package auth

import (
	"encoding/json"
	"sort"
	"strings"
)

// Keys the backend uses for errors that are not bound to a form field.
const (
	keyNonField = "non_field_errors"
	keyDetail   = "detail"
	keyError    = "error"
)

// Failure describes why a session operation did not succeed.
// Fields holds per-field messages so forms can render them next to inputs.
type Failure struct {
	Message string
	Fields  map[string][]string
	Raw     json.RawMessage
}

// Result is the outcome of a session operation. Expected failures (bad
// credentials, validation rejected by the backend, network trouble) are
// reported here instead of as Go errors.
type Result struct {
	Success bool
	Failure *Failure
}

// Succeeded returns a successful result.
func Succeeded() Result { return Result{Success: true} }

// Failed returns a failed result with only a message.
func Failed(message string) Result {
	return Result{Failure: &Failure{Message: message}}
}

// FailedWithPayload builds a failed result from a backend error body.
// When the body carries nothing usable the fallback message is used.
func FailedWithPayload(raw []byte, fallback string) Result {
	f := ParseFailure(raw)
	if f.Message == "" && len(f.Fields) == 0 {
		f.Message = fallback
	}
	return Result{Failure: &f}
}

// ParseFailure decodes the backend's error shapes:
//
//	{"detail": "..."}, {"error": "..."}, {"non_field_errors": ["..."]},
//	{"username": ["..."], "password": ["..."]}, or a bare JSON string.
//
// Unknown shapes are kept only in Raw.
func ParseFailure(raw []byte) Failure {
	f := Failure{}
	if len(raw) == 0 {
		return f
	}
	f.Raw = append(json.RawMessage(nil), raw...)

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f.Message = s
		return f
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return f
	}

	var general []string
	for key, val := range obj {
		msgs := decodeMessages(val)
		if len(msgs) == 0 {
			continue
		}
		switch key {
		case keyNonField, keyDetail, keyError:
			general = append(general, msgs...)
		default:
			if f.Fields == nil {
				f.Fields = make(map[string][]string)
			}
			f.Fields[key] = msgs
		}
	}
	sort.Strings(general)
	f.Message = strings.Join(general, " ")
	return f
}

func decodeMessages(val json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(val, &one); err == nil {
		if one == "" {
			return nil
		}
		return []string{one}
	}
	var many []any
	if err := json.Unmarshal(val, &many); err != nil {
		return nil
	}
	out := make([]string, 0, len(many))
	for _, m := range many {
		if str, ok := m.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	return out
}

// FieldError returns the first message for field, if any.
func (f *Failure) FieldError(field string) string {
	if f == nil || len(f.Fields[field]) == 0 {
		return ""
	}
	return f.Fields[field][0]
}

// Error lets a Failure travel through error-typed paths (CLI output).
func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if f.Message != "" {
		return f.Message
	}
	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(f.Fields[k], " "))
	}
	return strings.Join(parts, "; ")
}
