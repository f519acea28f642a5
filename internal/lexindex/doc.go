// Package lexindex provides a lexical indexing action for C-family sources.
//
// It is deliberately not a semantic analyzer: definitions are found by
// declaration-pattern heuristics (a name followed by a parenthesized
// parameter list and a body, #define lines, struct/enum/union/typedef
// declarations) and references by plain identifier occurrence. Names collide
// across scopes and macros are not expanded. Quoted #include directives are
// followed, so one compile command contributes per-file results for its
// headers too, and the background pipeline sees real multi-file translation
// units. A compiler-backed action can be plugged in behind the same
// interface.
package lexindex
