package mcp

// DefaultCatalog returns the built-in issue triage toolset. Each entry maps
// one MCP tool onto one endpoint of the upstream triage API; an external
// catalog file loaded at startup replaces this set entirely.
func DefaultCatalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "find_similar_issues",
			Description: "Find issues similar to a new issue report using vector search. Returns matching issues with their details and similarity scores.",
			Method:      "POST",
			Path:        "/similar",
			Params: []Param{
				{Name: "issue_text", Type: TypeString, In: LocationBody, Required: true, Description: "The text content of the new issue (title + description)"},
				{Name: "limit", Type: TypeNumber, In: LocationBody, Description: "Maximum number of similar issues to return (default: 5, max: 20)"},
			},
		},
		{
			Name:        "get_priority_hint",
			Description: "Get a priority assessment for an issue based on its content and similarity to existing issues. Returns a priority level with score and reasoning.",
			Method:      "POST",
			Path:        "/priority-hint",
			Params: []Param{
				{Name: "issue_text", Type: TypeString, In: LocationBody, Required: true, Description: "The text content of the issue (title + description)"},
				{Name: "priority_keywords", Type: TypeArray, In: LocationBody, Description: "Keywords that indicate high priority (e.g., 'crash', 'security'). Uses a built-in list if not specified."},
			},
		},
		{
			Name:        "summarize_issues",
			Description: "Generate a summary for a group of issues. Returns status counts, common labels, and key insights.",
			Method:      "POST",
			Path:        "/summarize",
			Params: []Param{
				{Name: "issue_ids", Type: TypeArray, Items: TypeNumber, In: LocationBody, Required: true, Description: "List of issue IDs to summarize"},
				{Name: "summary_type", Type: TypeString, In: LocationBody, Description: "Type of summary: brief, detailed, or themes (default: brief)"},
			},
		},
		{
			Name:        "search_issues_by_label",
			Description: "Search for issues carrying a specific label.",
			Method:      "GET",
			Path:        "/search-by-label",
			Params: []Param{
				{Name: "label", Type: TypeString, In: LocationQuery, Required: true, Description: "The label to search for (e.g., 'bug', 'enhancement')"},
				{Name: "limit", Type: TypeNumber, In: LocationQuery, Description: "Maximum number of issues to return (default: 10)"},
			},
		},
		{
			Name:        "api_health_check",
			Description: "Check whether the issue triage API is running and accessible.",
			Method:      "GET",
			Path:        "/",
		},
	}
}
