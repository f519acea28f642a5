// Package compiledb loads compilation databases in the compile_commands.json
// format and exposes them as a sequence of compile commands.
//
// A compilation database describes how each translation unit in a project is
// compiled. Entries carry either an "arguments" array or a shell-quoted
// "command" string; both forms normalize to the same CompileCommand.
//
// # Basic Usage
//
//	db, err := compiledb.Load("/path/to/build/compile_commands.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, cmd := range db.All() {
//	    idx.Enqueue(cmd.Directory, cmd)
//	}
package compiledb
