// Package mcp implements the Model Context Protocol (MCP) server for cindex.
//
// The MCP server exposes four tools to AI coding assistants:
//   - index_project: Index a C/C++ project from its compilation database
//   - find_symbols: Search indexed symbols by substring
//   - find_refs: List occurrences of a symbol name
//   - get_status: Check indexing progress and pipeline statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Tool: index_project
//
// Index a project by enqueuing every translation unit in its compilation
// database:
//
//	Request:
//	{
//	  "name": "index_project",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "compile_commands": "/path/to/project/compile_commands.json",
//	    "wait": false
//	  }
//	}
//
// Indexing runs in the background; the call returns as soon as the jobs
// are enqueued unless wait is true. Subsequent calls with unchanged files
// are cheap because per-file digests suppress redundant work, and persisted
// shards let an indexed project survive a server restart.
//
// # Tool: find_symbols
//
// Case-insensitive substring search over indexed symbol names:
//
//	Request:
//	{
//	  "name": "find_symbols",
//	  "arguments": {"query": "parse", "limit": 10}
//	}
//
// # Tool: find_refs
//
// Exact-name lookup of symbol occurrences:
//
//	Request:
//	{
//	  "name": "find_refs",
//	  "arguments": {"symbol": "parse_config", "limit": 100}
//	}
//
// # Tool: get_status
//
// Reports the project root, queue depth, worker activity, and merge
// statistics. Returns error -32003 if no project has been indexed yet.
//
// Queries always run against the last published snapshot, so results are
// self-consistent even while indexing is in progress.
package mcp
