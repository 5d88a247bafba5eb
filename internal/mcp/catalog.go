package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// maxCatalogSize caps how much of an external catalog file is read.
const maxCatalogSize = 1 << 20 // 1MB

// ParamType is the JSON type a tool parameter accepts. Values are checked
// strictly; there is no coercion between numbers and strings.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
	TypeArray   ParamType = "array"
)

// ParamLocation says where a parameter travels in the upstream request.
type ParamLocation string

const (
	LocationPath  ParamLocation = "path"
	LocationQuery ParamLocation = "query"
	LocationBody  ParamLocation = "body"
)

// Param describes one parameter of a bridge tool. Items applies to array
// parameters only and controls the advertised element type; it defaults to
// string.
type Param struct {
	Name        string        `json:"name"`
	Type        ParamType     `json:"type"`
	Description string        `json:"description,omitempty"`
	Required    bool          `json:"required,omitempty"`
	In          ParamLocation `json:"in"`
	Items       ParamType     `json:"items,omitempty"`
}

// ToolDefinition maps one MCP tool onto one upstream REST endpoint.
// Path may contain {name} placeholders; each placeholder must be matched
// by a required scalar path parameter of the same name.
type ToolDefinition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Method      string  `json:"method"`
	Path        string  `json:"path"`
	Params      []Param `json:"params,omitempty"`
}

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

var validParamTypes = map[ParamType]bool{
	TypeString:  true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeObject:  true,
	TypeArray:   true,
}

// Catalog is the immutable tool table the bridge dispatches against.
// Construction fails on the first invalid or duplicate definition; a
// catalog that loads is a catalog every tool of which can be called.
type Catalog struct {
	tools []ToolDefinition
	index map[string]int
}

// NewCatalog validates and normalizes the given definitions. Methods are
// upper-cased and omitted parameter locations are defaulted (query for
// GET/DELETE, body otherwise) before validation runs.
func NewCatalog(defs []ToolDefinition) (*Catalog, error) {
	tools := make([]ToolDefinition, len(defs))
	index := make(map[string]int, len(defs))
	for i, td := range defs {
		td.Method = strings.ToUpper(td.Method)
		td.Params = append([]Param(nil), td.Params...)
		for j := range td.Params {
			if td.Params[j].In == "" {
				if td.Method == "GET" || td.Method == "DELETE" {
					td.Params[j].In = LocationQuery
				} else {
					td.Params[j].In = LocationBody
				}
			}
		}
		if err := ValidateTool(td); err != nil {
			return nil, err
		}
		if _, dup := index[td.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", td.Name)
		}
		tools[i] = td
		index[td.Name] = i
	}
	return &Catalog{tools: tools, index: index}, nil
}

// Lookup returns the definition for name. The second return is false when
// no such tool exists.
func (c *Catalog) Lookup(name string) (ToolDefinition, bool) {
	i, ok := c.index[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return c.tools[i], true
}

// Tools returns the definitions in registration order.
func (c *Catalog) Tools() []ToolDefinition {
	out := make([]ToolDefinition, len(c.tools))
	copy(out, c.tools)
	return out
}

// Len reports the number of tools in the catalog.
func (c *Catalog) Len() int {
	return len(c.tools)
}

// ValidateTool checks a single tool definition for structural problems:
// bad method or path, invalid parameter types, non-scalar or optional path
// parameters, object query parameters, and placeholder mismatches in
// either direction.
func ValidateTool(td ToolDefinition) error {
	if td.Name == "" {
		return fmt.Errorf("tool with empty name")
	}
	if !allowedMethods[strings.ToUpper(td.Method)] {
		return fmt.Errorf("tool %q: unsupported method %q", td.Name, td.Method)
	}
	if td.Path == "" {
		return fmt.Errorf("tool %q: empty path", td.Name)
	}
	if !strings.HasPrefix(td.Path, "/") {
		return fmt.Errorf("tool %q: path must start with /", td.Name)
	}
	if strings.Contains(td.Path, "..") {
		return fmt.Errorf("tool %q: path must not contain ..", td.Name)
	}

	placeholders, err := pathPlaceholders(td.Path)
	if err != nil {
		return fmt.Errorf("tool %q: %w", td.Name, err)
	}

	seen := make(map[string]bool, len(td.Params))
	pathParams := make(map[string]bool)
	for _, p := range td.Params {
		if p.Name == "" {
			return fmt.Errorf("tool %q: parameter with empty name", td.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %q: duplicate parameter %q", td.Name, p.Name)
		}
		seen[p.Name] = true
		if !validParamTypes[p.Type] {
			return fmt.Errorf("tool %q: parameter %q has invalid type %q", td.Name, p.Name, p.Type)
		}
		if p.Items != "" {
			if p.Type != TypeArray {
				return fmt.Errorf("tool %q: parameter %q sets items but is not an array", td.Name, p.Name)
			}
			if p.Items != TypeString && p.Items != TypeNumber && p.Items != TypeBoolean {
				return fmt.Errorf("tool %q: parameter %q has invalid item type %q", td.Name, p.Name, p.Items)
			}
		}
		switch p.In {
		case LocationPath:
			if !p.Required {
				return fmt.Errorf("tool %q: path parameter %q must be required", td.Name, p.Name)
			}
			if p.Type != TypeString && p.Type != TypeNumber && p.Type != TypeBoolean {
				return fmt.Errorf("tool %q: path parameter %q must be a scalar type", td.Name, p.Name)
			}
			pathParams[p.Name] = true
		case LocationQuery:
			if p.Type == TypeObject {
				return fmt.Errorf("tool %q: query parameter %q cannot be an object", td.Name, p.Name)
			}
		case LocationBody:
		default:
			return fmt.Errorf("tool %q: parameter %q has invalid location %q", td.Name, p.Name, p.In)
		}
	}

	for _, ph := range placeholders {
		if !pathParams[ph] {
			return fmt.Errorf("tool %q: path placeholder {%s} has no matching path parameter", td.Name, ph)
		}
	}
	for name := range pathParams {
		if !containsString(placeholders, name) {
			return fmt.Errorf("tool %q: path parameter %q has no placeholder in path", td.Name, name)
		}
	}
	return nil
}

// pathPlaceholders extracts {name} segments from a path template.
func pathPlaceholders(path string) ([]string, error) {
	var names []string
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '{':
			end := strings.IndexByte(path[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder in path %q", path)
			}
			name := path[i+1 : i+end]
			if name == "" || strings.ContainsAny(name, "{/") {
				return nil, fmt.Errorf("malformed placeholder in path %q", path)
			}
			names = append(names, name)
			i += end
		case '}':
			return nil, fmt.Errorf("unmatched } in path %q", path)
		}
	}
	return names, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// LoadCatalogFile reads tool definitions from a JSON file. The file holds
// a single array of definitions; unknown fields are rejected so typos in a
// hand-written catalog fail loudly instead of silently dropping behavior.
func LoadCatalogFile(path string) ([]ToolDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxCatalogSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	if len(data) > maxCatalogSize {
		return nil, fmt.Errorf("catalog file %s exceeds %d bytes", path, maxCatalogSize)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var defs []ToolDefinition
	if err := dec.Decode(&defs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return defs, nil
}

// BuildMCPTool converts a tool definition into an MCP tool declaration
// with a JSON schema derived from the parameter table.
func BuildMCPTool(td ToolDefinition) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(td.Description)}
	for _, p := range td.Params {
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(td.Name, opts...)
}

func buildParamOption(p Param) mcp.ToolOption {
	var propOpts []mcp.PropertyOption
	if p.Description != "" {
		propOpts = append(propOpts, mcp.Description(p.Description))
	}
	if p.Required {
		propOpts = append(propOpts, mcp.Required())
	}
	switch p.Type {
	case TypeNumber:
		return mcp.WithNumber(p.Name, propOpts...)
	case TypeBoolean:
		return mcp.WithBoolean(p.Name, propOpts...)
	case TypeObject:
		return mcp.WithObject(p.Name, propOpts...)
	case TypeArray:
		switch p.Items {
		case TypeNumber:
			propOpts = append(propOpts, mcp.Items(map[string]any{"type": "number"}))
		case TypeBoolean:
			propOpts = append(propOpts, mcp.Items(map[string]any{"type": "boolean"}))
		default:
			propOpts = append(propOpts, mcp.WithStringItems())
		}
		return mcp.WithArray(p.Name, propOpts...)
	default:
		return mcp.WithString(p.Name, propOpts...)
	}
}
