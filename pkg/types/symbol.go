package types

import "errors"

// SymbolKind represents the kind of language construct a symbol names
type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindStruct   SymbolKind = "struct"
	KindEnum     SymbolKind = "enum"
	KindTypedef  SymbolKind = "typedef"
	KindVariable SymbolKind = "variable"
	KindMacro    SymbolKind = "macro"
	KindUnknown  SymbolKind = "unknown"
)

// Position represents a location in source code (1-based)
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Symbol represents one definition discovered by the indexing action.
// Symbols are scoped to the file that defines them; a translation unit
// contributes symbols for its main file and for every header it includes.
type Symbol struct {
	// Identification
	Name string     `json:"name"`
	Kind SymbolKind `json:"kind"`

	// Location of the definition
	File string   `json:"file"` // Absolute path
	Def  Position `json:"def"`

	// Content
	Signature string `json:"signature,omitempty"`
}

// ValidateKind checks if the symbol kind is valid
func (s *Symbol) ValidateKind() error {
	switch s.Kind {
	case KindFunction, KindStruct, KindEnum, KindTypedef, KindVariable, KindMacro, KindUnknown:
		return nil
	default:
		return errors.New("invalid symbol kind")
	}
}
