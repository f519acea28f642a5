package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexProjectTool returns the tool definition for index_project
func indexProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_project",
		Description: "Index a C/C++ project from its compilation database",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root",
				},
				"compile_commands": map[string]interface{}{
					"type":        "string",
					"description": "Path to compile_commands.json (default: <path>/compile_commands.json)",
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, block until all enqueued translation units are indexed",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// findSymbolsTool returns the tool definition for find_symbols
func findSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_symbols",
		Description: "Search indexed symbols by case-insensitive substring match",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Substring to match against symbol names",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// findRefsTool returns the tool definition for find_refs
func findRefsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_refs",
		Description: "List occurrences of a symbol name across indexed files",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Exact symbol name",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-1000)",
					"default":     100,
					"minimum":     1,
					"maximum":     1000,
				},
			},
			Required: []string{"symbol"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing progress and pipeline statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
