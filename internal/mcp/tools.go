package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/cindex-mcp/internal/compiledb"
	"github.com/dshills/cindex-mcp/internal/watcher"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound = -32001 // Path has no compilation database
	ErrorCodeNotIndexed      = -32003 // No project indexed yet
	ErrorCodeEmptyQuery      = -32004 // Query parameter is empty
)

// Sentinel errors for path validation
var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)

// handleIndexProject handles the index_project tool invocation
func (s *Server) handleIndexProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	// Validate path exists and is accessible
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	ccPath := getStringDefault(args, "compile_commands", filepath.Join(path, "compile_commands.json"))
	wait := getBoolDefault(args, "wait", false)

	// Load the compilation database
	db, err := compiledb.Load(ccPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newMCPError(ErrorCodeProjectNotFound, "no compilation database", map[string]interface{}{
				"path": ccPath,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "failed to load compilation database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// A failed store initialization disables persistence but never blocks
	// indexing.
	if err := s.store.Initialize(path); err != nil {
		s.log.Warn("shard store initialization failed, continuing without persistence",
			"root", path, "error", err)
	}

	// Record commands so the watcher can re-enqueue changed files, then
	// hand everything to the background pipeline.
	s.mu.Lock()
	s.root = path
	for _, cmd := range db.All() {
		s.commands[cmd.MainFile()] = cmd
	}
	s.mu.Unlock()

	s.bg.EnqueueAll(path, db)

	if err := s.startWatcher(path); err != nil {
		s.log.Warn("file watcher unavailable", "root", path, "error", err)
	}

	if wait {
		s.bg.BlockUntilIdle()
	}

	stats := s.bg.Stats()
	response := map[string]interface{}{
		"enqueued":      len(db.All()),
		"root":          path,
		"queued":        stats.Queued,
		"active":        stats.Active,
		"indexed_files": stats.IndexedFiles,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// startWatcher starts the file watcher for root if the configuration
// enables it and no watcher is running yet.
func (s *Server) startWatcher(root string) error {
	if !s.cfg.Watcher.Enabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	w, err := watcher.New(root, s.cfg.Watcher.Debounce, s.onFilesChanged, s.log)
	if err != nil {
		return err
	}
	if err := w.Start(s.ctx); err != nil {
		return err
	}
	s.watcher = w
	return nil
}

// onFilesChanged re-enqueues translation units affected by a batch of
// filesystem changes. A changed main file re-enqueues just that unit; a
// changed header re-enqueues every unit, relying on digest checks to make
// unaffected ones cheap.
func (s *Server) onFilesChanged(paths []string) {
	s.mu.Lock()
	root := s.root
	var affected []compiledb.CompileCommand
	headerChanged := false
	for _, p := range paths {
		if cmd, ok := s.commands[p]; ok {
			affected = append(affected, cmd)
		} else if isHeader(p) {
			headerChanged = true
		}
	}
	if headerChanged {
		affected = affected[:0]
		for _, cmd := range s.commands {
			affected = append(affected, cmd)
		}
	}
	s.mu.Unlock()

	for _, cmd := range affected {
		s.bg.Enqueue(root, cmd)
	}
}

func isHeader(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h", ".hh", ".hpp", ".hxx", ".inc":
		return true
	}
	return false
}

// handleFindSymbols handles the find_symbols tool invocation
func (s *Server) handleFindSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param": "query",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	snap := s.index.Snapshot()
	symbols := snap.FindSymbols(query, limit)

	results := make([]map[string]interface{}, 0, len(symbols))
	for _, sym := range symbols {
		results = append(results, map[string]interface{}{
			"name":      sym.Name,
			"kind":      string(sym.Kind),
			"file":      sym.File,
			"line":      sym.Def.Line,
			"column":    sym.Def.Column,
			"signature": sym.Signature,
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"symbols": results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFindRefs handles the find_refs tool invocation
func (s *Server) handleFindRefs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	symbol, ok := args["symbol"].(string)
	if !ok || strings.TrimSpace(symbol) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "symbol parameter is required and cannot be empty", map[string]interface{}{
			"param": "symbol",
		})
	}

	limit := getIntDefault(args, "limit", 100)
	if limit < 1 || limit > 1000 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 1000", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	snap := s.index.Snapshot()
	refs := snap.Refs(symbol, limit)

	results := make([]map[string]interface{}, 0, len(refs))
	for _, ref := range refs {
		results = append(results, map[string]interface{}{
			"kind":   string(ref.Kind),
			"file":   ref.File,
			"line":   ref.Pos.Line,
			"column": ref.Pos.Column,
		})
	}

	response := map[string]interface{}{
		"symbol": symbol,
		"count":  len(results),
		"refs":   results,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	root := s.root
	watching := s.watcher != nil
	s.mu.Unlock()

	if root == "" {
		return nil, newMCPError(ErrorCodeNotIndexed, "no project indexed", nil)
	}

	stats := s.bg.Stats()
	snap := s.index.Snapshot()

	response := map[string]interface{}{
		"root":     root,
		"storage":  s.cfg.Storage,
		"watching": watching,
		"pipeline": map[string]interface{}{
			"queued":          stats.Queued,
			"active":          stats.Active,
			"idle":            stats.Idle,
			"jobs_run":        stats.JobsRun,
			"jobs_failed":     stats.JobsFailed,
			"files_merged":    stats.FilesMerged,
			"files_unchanged": stats.FilesUnchanged,
			"shard_hits":      stats.ShardHits,
			"shard_misses":    stats.ShardMisses,
		},
		"index": map[string]interface{}{
			"files":   snap.FileCount(),
			"symbols": snap.SymbolCount(),
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is accessible
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}
