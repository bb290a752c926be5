package acquiring

import (
	"fmt"
)

const (
	fieldErrorCode    = "errorCode"
	fieldErrorMessage = "errorMessage"
	successCode       = "0"
)

// Response is the decoded envelope of a successful action, errorCode included.
type Response map[string]any

func (r Response) ErrorCode() string {
	code, _ := stringField(r, fieldErrorCode)
	return code
}

// String returns the field as text. Numbers keep their literal form.
func (r Response) String(key string) (string, bool) {
	return stringField(r, key)
}

// Decode re-reads the payload into a typed value, e.g. an order status struct.
func (r Response) Decode(v any) error {
	b, err := jsonAPI.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := jsonAPI.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeEnvelope parses body and checks the errorCode contract.
func decodeEnvelope(body string) (Response, error) {
	var decoded any
	if err := jsonAPI.UnmarshalFromString(body, &decoded); err != nil {
		return nil, malformed(err)
	}

	m, ok := decoded.(map[string]any)
	if !ok {
		return nil, malformed(fmt.Errorf("expected a JSON object, got %T", decoded))
	}

	code, ok := stringField(m, fieldErrorCode)
	if !ok {
		return nil, malformed(nil)
	}

	// Only the JSON string "0" is success; a numeric 0 is an error code like any other.
	if s, isString := m[fieldErrorCode].(string); isString && s == successCode {
		return Response(m), nil
	}

	message, ok := stringField(m, fieldErrorMessage)
	if !ok {
		message = unknownErrorMessage
	}

	return nil, &ActionError{Code: code, Message: message}
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return fmt.Sprint(t), true
	}
}
