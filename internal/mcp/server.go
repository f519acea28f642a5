package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/cindex-mcp/internal/compiledb"
	"github.com/dshills/cindex-mcp/internal/config"
	"github.com/dshills/cindex-mcp/internal/indexer"
	"github.com/dshills/cindex-mcp/internal/lexindex"
	"github.com/dshills/cindex-mcp/internal/memindex"
	"github.com/dshills/cindex-mcp/internal/shard"
	"github.com/dshills/cindex-mcp/internal/watcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "cindex-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp   *server.MCPServer
	cfg   *config.Config
	log   *slog.Logger
	index *memindex.Index
	bg    *indexer.BackgroundIndex
	store shard.Store

	// Background context for the watcher and the pipeline. Tool-call
	// contexts are cancelled when the call returns, so long-lived work
	// never runs on them.
	ctx context.Context

	// Project state set by index_project. commands maps each main file
	// to its compile command so the watcher can re-enqueue it on change.
	mu       sync.Mutex
	root     string
	commands map[string]compiledb.CompileCommand
	watcher  *watcher.Watcher
}

// NewServer creates a new MCP server instance
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store, err := newStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	// In-memory index published to readers
	index := memindex.New()

	// Background indexing pipeline
	bg := indexer.New(ctx, lexindex.New(nil), index, &indexer.Config{
		Workers:     cfg.Workers,
		Store:       store,
		ResourceDir: cfg.ResourceDir,
		URISchemes:  cfg.URISchemes,
		Logger:      logger,
	})

	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		cfg:      cfg,
		log:      logger,
		index:    index,
		bg:       bg,
		store:    store,
		ctx:      ctx,
		commands: make(map[string]compiledb.CompileCommand),
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// newStore builds the shard store selected by the configuration.
func newStore(backend string) (shard.Store, error) {
	switch backend {
	case config.StorageDisk:
		return shard.NewDiskStore(), nil
	case config.StorageSQLite:
		return shard.NewSQLiteStore(), nil
	case config.StorageNone, "":
		return shard.NullStore{}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	return server.ServeStdio(s.mcp)
}

// Close stops the watcher and the background pipeline. Pending jobs are
// discarded; in-flight jobs are joined.
func (s *Server) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		_ = w.Stop()
	}
	return s.bg.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	// Register index_project tool
	s.mcp.AddTool(indexProjectTool(), s.handleIndexProject)

	// Register find_symbols tool
	s.mcp.AddTool(findSymbolsTool(), s.handleFindSymbols)

	// Register find_refs tool
	s.mcp.AddTool(findRefsTool(), s.handleFindRefs)

	// Register get_status tool
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
