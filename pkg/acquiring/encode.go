package acquiring

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

const (
	paramUserName = "userName"
	paramPassword = "password"
)

// buildParams copies data into form values and injects the credentials.
// Caller-supplied userName and password are discarded.
func buildParams(data map[string]any, userName, password string) (url.Values, error) {
	params := make(url.Values, len(data)+2)
	for key, value := range data {
		if key == paramUserName || key == paramPassword {
			continue
		}
		s, err := formValue(value)
		if err != nil {
			return nil, &ConfigError{Field: "data." + key, Err: err}
		}
		params.Set(key, s)
	}
	params.Set(paramUserName, userName)
	params.Set(paramPassword, password)
	return params, nil
}

// formValue stringifies scalars and JSON-encodes nested values such as
// jsonParams or orderBundle, which the API takes as JSON strings.
func formValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(t).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(t).Uint(), 10), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	case fmt.Stringer:
		return t.String(), nil
	}

	b, err := jsonAPI.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return string(b), nil
}
