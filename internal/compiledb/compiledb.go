package compiledb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrEmptyCommand is returned for a database entry with neither an
// "arguments" array nor a "command" string.
var ErrEmptyCommand = errors.New("compilation database entry has no command")

// CompileCommand describes how one translation unit is compiled.
// Immutable once created.
type CompileCommand struct {
	// Directory is the working directory of the compilation. Relative
	// paths in Args are resolved against it.
	Directory string

	// Filename is the main source file of the translation unit,
	// absolute if the entry's file field was absolute.
	Filename string

	// Args is the full compiler invocation, argv[0] included.
	Args []string
}

// MainFile returns the absolute path of the translation unit's main file.
func (c CompileCommand) MainFile() string {
	if filepath.IsAbs(c.Filename) {
		return filepath.Clean(c.Filename)
	}
	return filepath.Join(c.Directory, c.Filename)
}

// Database is a read-only sequence of compile commands.
type Database interface {
	// All returns every command in the database, in file order.
	All() []CompileCommand
}

// entry mirrors one object of compile_commands.json. Exactly one of
// Arguments and Command is expected to be present.
type entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	Command   string   `json:"command,omitempty"`
}

// JSONDatabase is a compilation database loaded from compile_commands.json.
type JSONDatabase struct {
	commands []CompileCommand
}

// All returns every command in the database, in file order.
func (db *JSONDatabase) All() []CompileCommand {
	return db.commands
}

// Load reads a compile_commands.json file from disk.
func Load(path string) (*JSONDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compilation database: %w", err)
	}
	return Parse(data)
}

// Parse decodes compile_commands.json content.
func Parse(data []byte) (*JSONDatabase, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse compilation database: %w", err)
	}

	db := &JSONDatabase{commands: make([]CompileCommand, 0, len(entries))}
	for i, e := range entries {
		args := e.Arguments
		if len(args) == 0 {
			args = splitCommand(e.Command)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.File, ErrEmptyCommand)
		}
		db.commands = append(db.commands, CompileCommand{
			Directory: e.Directory,
			Filename:  e.File,
			Args:      args,
		})
	}
	return db, nil
}

// splitCommand splits a shell-quoted command string into arguments.
// Handles single and double quotes and backslash escapes, which covers
// what build systems actually emit into compile_commands.json.
func splitCommand(cmd string) []string {
	var args []string
	var cur strings.Builder
	var quote rune
	escaped := false
	pending := false

	flush := func() {
		if pending {
			args = append(args, cur.String())
			cur.Reset()
			pending = false
		}
	}

	for _, r := range cmd {
		switch {
		case escaped:
			cur.WriteRune(r)
			pending = true
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			pending = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			pending = true
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	flush()
	return args
}
