package types

// RefKind classifies how a symbol is used at a reference site
type RefKind string

const (
	RefDefinition RefKind = "definition"
	RefReference  RefKind = "reference"
)

// Ref represents one occurrence of a symbol name in a source file.
// Like symbols, refs are scoped to the file they occur in, not to the
// translation unit that discovered them.
type Ref struct {
	// Symbol is the referenced symbol's name. The lexical indexer has no
	// semantic resolution, so names collide across scopes; a semantic
	// action would populate this with a globally unique symbol ID.
	Symbol string `json:"symbol"`

	Kind RefKind  `json:"kind"`
	File string   `json:"file"` // Absolute path
	Pos  Position `json:"pos"`
}
