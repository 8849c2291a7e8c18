package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrNoHost = errors.New("no host configured")

type Parameter map[string]string

// Encode returns the parameters sorted by key.
func (p Parameter) Encode() string {
	values := url.Values{}
	for key, value := range p {
		values.Set(key, value)
	}

	return values.Encode()
}

// JSON is a decoded json object. Its getters take a dotted path, e.g.
// "result.logs".
type JSON map[string]any

type Array []JSON

type Response struct {
	Code    int
	Header  http.Header
	Body    any
	RawBody []byte
}

// Get returns the raw value at path.
func (m JSON) Get(path string) (any, error) {
	var current any = m
	for _, key := range strings.Split(path, ".") {
		object, ok := asJSON(current)
		if !ok {
			return nil, fmt.Errorf("field %s of %s is not an object", key, path)
		}

		if current, ok = object[key]; !ok {
			return nil, fmt.Errorf("not found field %s", path)
		}
	}

	return current, nil
}

// GetJSON returns nil without error for a null value.
func (m JSON) GetJSON(path string) (JSON, error) {
	return getAs(m, path, asJSON)
}

func (m JSON) GetArray(path string) (Array, error) {
	return getAs(m, path, func(v any) (Array, bool) {
		if a, ok := v.(Array); ok {
			return a, true
		}

		return convertSlice(v, asJSON)
	})
}

func (m JSON) GetString(path string) (string, error) {
	return getAs(m, path, func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}

func (m JSON) GetStringArray(path string) ([]string, error) {
	return getAs(m, path, func(v any) ([]string, bool) {
		return convertSlice(v, func(e any) (string, bool) {
			s, ok := e.(string)
			return s, ok
		})
	})
}

// GetInt accepts json numbers without fraction.
func (m JSON) GetInt(path string) (int, error) {
	return getAs(m, path, func(v any) (int, bool) {
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) {
			return 0, false
		}

		return int(f), true
	})
}

func getAs[T any](m JSON, path string, convert func(any) (T, bool)) (T, error) {
	var zero T

	value, err := m.Get(path)
	if err != nil {
		return zero, err
	}

	if value == nil {
		return zero, nil
	}

	result, ok := convert(value)
	if !ok {
		return zero, fmt.Errorf("invalid type of field %s (%T)", path, value)
	}

	return result, nil
}

func asJSON(v any) (JSON, bool) {
	switch t := v.(type) {
	case JSON:
		return t, true
	case map[string]any:
		return JSON(t), true
	}

	return nil, false
}

func convertSlice[T any](v any, convert func(any) (T, bool)) ([]T, bool) {
	elements, ok := v.([]any)
	if !ok {
		return nil, false
	}

	result := make([]T, 0, len(elements))
	for _, e := range elements {
		converted, ok := convert(e)
		if !ok {
			return nil, false
		}

		result = append(result, converted)
	}

	return result, true
}

// parseBody accepts an empty body, a json object or an array of objects.
func parseBody(body []byte) (any, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return JSON{}, nil
	}

	object := JSON{}
	if err := json.Unmarshal(body, &object); err == nil {
		return object, nil
	}

	array := Array{}
	if err := json.Unmarshal(body, &array); err == nil {
		return array, nil
	}

	return nil, errors.New("body is neither a json object nor an array")
}
