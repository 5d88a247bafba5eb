package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// BuiltRequest is a fully resolved upstream HTTP request: final URL with
// path placeholders substituted and query string attached, headers, and an
// optional JSON body. Body is nil when the tool declares no body parameters
// or none were supplied.
type BuiltRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Builder turns validated tool arguments into upstream requests. It holds
// the resolved base URL and bearer token and is safe for concurrent use.
type Builder struct {
	baseURL string
	token   string
}

func NewBuilder(baseURL, token string) *Builder {
	return &Builder{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// Build validates args against the tool's parameter table and assembles the
// upstream request. Checks run in a fixed order so the reported failure is
// deterministic: missing required parameters first, then type mismatches,
// then unknown parameters, each walked in declaration order. The first
// failure is returned as a *ValidationError and nothing is assembled.
func (b *Builder) Build(td ToolDefinition, args map[string]interface{}) (*BuiltRequest, error) {
	for _, p := range td.Params {
		if !p.Required {
			continue
		}
		if _, ok := args[p.Name]; !ok {
			return nil, &ValidationError{Reason: ReasonMissingParameter, Param: p.Name}
		}
	}

	for _, p := range td.Params {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		actual := jsonTypeName(v)
		if actual != string(p.Type) {
			return nil, &ValidationError{
				Reason:   ReasonTypeMismatch,
				Param:    p.Name,
				Expected: string(p.Type),
				Actual:   actual,
			}
		}
	}

	declared := make(map[string]bool, len(td.Params))
	for _, p := range td.Params {
		declared[p.Name] = true
	}
	var unknown []string
	for name := range args {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ValidationError{Reason: ReasonUnknownParameter, Param: unknown[0]}
	}

	path := td.Path
	var query strings.Builder
	body := make(map[string]interface{})
	for _, p := range td.Params {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		switch p.In {
		case LocationPath:
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(renderScalar(v)))
		case LocationQuery:
			appendQuery(&query, p.Name, v)
		case LocationBody:
			body[p.Name] = v
		}
	}

	target := b.baseURL + path
	if query.Len() > 0 {
		target += "?" + query.String()
	}

	header := make(http.Header)
	header.Set("Authorization", "Bearer "+b.token)
	header.Set("Accept", "application/json")

	var payload []byte
	if len(body) > 0 {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		header.Set("Content-Type", "application/json")
	}

	return &BuiltRequest{
		Method: strings.ToUpper(td.Method),
		URL:    target,
		Header: header,
		Body:   payload,
	}, nil
}

// jsonTypeName reports the JSON type of a decoded argument value. Numeric
// and string values never cross over; "42" is a string and 42 is a number.
func jsonTypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

// renderScalar formats a scalar argument for use in a path or query value.
// Whole numbers render without a trailing fraction.
func renderScalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	}
	return fmt.Sprint(v)
}

// appendQuery writes name=value pairs in the order parameters are declared.
// Array values expand to one pair per element under the same name.
func appendQuery(query *strings.Builder, name string, v interface{}) {
	if arr, ok := v.([]interface{}); ok {
		for _, item := range arr {
			writeQueryPair(query, name, renderScalar(item))
		}
		return
	}
	writeQueryPair(query, name, renderScalar(v))
}

func writeQueryPair(query *strings.Builder, name, value string) {
	if query.Len() > 0 {
		query.WriteByte('&')
	}
	query.WriteString(url.QueryEscape(name))
	query.WriteByte('=')
	query.WriteString(url.QueryEscape(value))
}
