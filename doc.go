// Package tisl compiles TISL interface descriptions into host bindings for
// WebAssembly guests.
//
// A TISL file declares modules of functions, records and enums as
// s-expressions. The compiler parses it into a resolved tree and hands
// each root module to a target, which yields the generated source as a
// lazy sequence of fragments.
//
// # Architecture Overview
//
//	tisl/             Root package with Parse, Compile and the default registry
//	├── syntax/       Lexer producing structural forms
//	├── ast/          Module tree, symbol tables, resolution and fingerprints
//	├── abi/          Boundary wire types, record layout and result plans
//	├── target/       Target interface, options and registry
//	│   ├── rust/     rust-wasmtime host bindings
//	│   └── witgen/   WIT interface projection
//	├── host/         wazero host modules and guest import checks
//	├── config/       YAML/JSON driver configuration
//	├── errors/       Structured error types with source snippets
//	└── cmd/tislc/    Command line driver
//
// # Quick Start
//
// Generate Rust bindings for a schema:
//
//	var out strings.Builder
//	err := tisl.Compile(&out, "birds.tisl", src, rust.Name, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
package tisl
