package lexindex

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/cindex-mcp/internal/indexer"
	"github.com/dshills/cindex-mcp/pkg/types"
)

// Action is a lexical indexer.Action implementation. Safe for concurrent
// use; each Index call works on its own state.
type Action struct {
	fs indexer.FileReader
}

// New creates a lexical action reading through fs. A nil fs reads from the
// local filesystem.
func New(fs indexer.FileReader) *Action {
	if fs == nil {
		fs = indexer.OSFileReader{}
	}
	return &Action{fs: fs}
}

// fileState is one translation-unit member during a run.
type fileState struct {
	content []byte
	toks    []token
	dirs    []directive
}

// includeCandidates lists the paths an include directive may resolve to, in
// search order: the including file's directory for quoted includes, then
// the -I directories.
func includeCandidates(d directive, includer string, searchDirs []string) []string {
	var out []string
	if !d.angled {
		out = append(out, filepath.Join(filepath.Dir(includer), d.name))
	}
	for _, dir := range searchDirs {
		out = append(out, filepath.Join(dir, d.name))
	}
	return out
}

// Index lexically indexes the translation unit named by inv.Cmd: the main
// file plus every include reachable through quoted (or -I-resolvable)
// directives. ResourceDir and URISchemes are accepted for interface
// compatibility; a lexical scan has no use for them.
func (a *Action) Index(ctx context.Context, inv indexer.Invocation) (*indexer.Result, error) {
	main := inv.Cmd.MainFile()
	searchDirs := includeDirs(inv.Cmd.Args, inv.Cmd.Directory)

	files := make(map[string]*fileState)
	if err := a.gather(ctx, main, searchDirs, files); err != nil {
		return nil, err
	}

	// First pass: definitions per file, plus the TU-wide name set that
	// identifier occurrences are matched against.
	defs := make(map[string][]types.Symbol)
	names := make(map[string]bool)
	for path, st := range files {
		syms := scanDefinitions(path, st)
		defs[path] = syms
		for _, sym := range syms {
			names[sym.Name] = true
		}
	}

	// Second pass: every occurrence of a known name becomes a ref.
	res := &indexer.Result{
		MainFile: main,
		PerFile:  make(map[string]indexer.FileResult, len(files)),
	}
	for path, st := range files {
		defsAt := make(map[types.Position]bool)
		var sb types.SymbolSlabBuilder
		for _, sym := range defs[path] {
			sb.Add(sym)
			defsAt[sym.Def] = true
		}

		var rb types.RefSlabBuilder
		for _, tok := range st.toks {
			if !tok.ident || !names[tok.text] || keywords[tok.text] {
				continue
			}
			kind := types.RefReference
			if defsAt[tok.pos] {
				kind = types.RefDefinition
			}
			rb.Add(types.Ref{Symbol: tok.text, Kind: kind, File: path, Pos: tok.pos})
		}

		res.PerFile[path] = indexer.FileResult{
			Digest:  types.DigestOf(st.content),
			Symbols: sb.Build(),
			Refs:    rb.Build(),
		}
	}
	return res, nil
}

// gather reads main and, transitively, everything it includes. Includes
// that cannot be resolved (system headers outside the search dirs) are
// skipped; a translation unit whose main file cannot be read is an error.
func (a *Action) gather(ctx context.Context, main string, searchDirs []string, files map[string]*fileState) error {
	if _, err := a.read(main, files); err != nil {
		return fmt.Errorf("failed to read main file %s: %w", main, err)
	}

	pending := []string{main}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := pending[0]
		pending = pending[1:]

		for _, d := range files[path].dirs {
			if d.kind != "include" {
				continue
			}
			for _, candidate := range includeCandidates(d, path, searchDirs) {
				if _, seen := files[candidate]; seen {
					break
				}
				if loaded, err := a.read(candidate, files); err == nil && loaded {
					pending = append(pending, candidate)
					break
				}
			}
		}
	}
	return nil
}

// read loads path into files unless already present. Returns whether a new
// entry was added.
func (a *Action) read(path string, files map[string]*fileState) (bool, error) {
	if _, seen := files[path]; seen {
		return false, nil
	}
	content, err := a.fs.ReadFile(path)
	if err != nil {
		return false, err
	}
	files[path] = &fileState{
		content: content,
		toks:    tokenize(content),
		dirs:    scanDirectives(content),
	}
	return true, nil
}

// includeDirs extracts -I search directories from a compiler invocation,
// resolving relative ones against the compile directory.
func includeDirs(args []string, dir string) []string {
	var dirs []string
	add := func(d string) {
		if d == "" {
			return
		}
		if !filepath.IsAbs(d) {
			d = filepath.Join(dir, d)
		}
		dirs = append(dirs, d)
	}
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-I" && i+1 < len(args):
			add(args[i+1])
			i++
		case strings.HasPrefix(args[i], "-I"):
			add(args[i][2:])
		}
	}
	return dirs
}

// scanDefinitions applies the declaration heuristics to one file.
func scanDefinitions(path string, st *fileState) []types.Symbol {
	var syms []types.Symbol

	for _, d := range st.dirs {
		if d.kind == "define" {
			syms = append(syms, types.Symbol{
				Name: d.name,
				Kind: types.KindMacro,
				File: path,
				Def:  d.pos,
			})
		}
	}

	toks := st.toks
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if !tok.ident {
			continue
		}
		switch tok.text {
		case "struct", "enum", "union":
			// struct Name { ... }  (skip forward declarations and uses)
			if i+2 < len(toks) && toks[i+1].ident && toks[i+2].text == "{" {
				kind := types.KindStruct
				if tok.text == "enum" {
					kind = types.KindEnum
				}
				syms = append(syms, types.Symbol{
					Name: toks[i+1].text,
					Kind: kind,
					File: path,
					Def:  toks[i+1].pos,
				})
				i += 2
			}
		case "typedef":
			// The name being defined is the last identifier before ';'.
			var name *token
			for j := i + 1; j < len(toks) && toks[j].text != ";"; j++ {
				if toks[j].ident && !keywords[toks[j].text] {
					name = &toks[j]
				}
			}
			if name != nil {
				syms = append(syms, types.Symbol{
					Name: name.text,
					Kind: types.KindTypedef,
					File: path,
					Def:  name.pos,
				})
			}
		default:
			if keywords[tok.text] {
				continue
			}
			// name ( params ) {  -> function definition
			if i+1 < len(toks) && toks[i+1].text == "(" {
				if end := matchParen(toks, i+1); end > 0 && end+1 < len(toks) && toks[end+1].text == "{" {
					syms = append(syms, types.Symbol{
						Name:      tok.text,
						Kind:      types.KindFunction,
						File:      path,
						Def:       tok.pos,
						Signature: signature(toks, i, end),
					})
					i = end
				}
			}
		}
	}
	return syms
}

// matchParen returns the index of the ')' matching the '(' at open, or -1.
func matchParen(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// signature renders the tokens of a definition head as a readable string.
func signature(toks []token, name, close int) string {
	var b strings.Builder
	for i := name; i <= close; i++ {
		if i > name && toks[i-1].ident && (toks[i].ident || toks[i].text == "*") {
			b.WriteByte(' ')
		}
		b.WriteString(toks[i].text)
	}
	return b.String()
}
