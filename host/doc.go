// Package host checks TISL boundary signatures against real WASM modules
// using wazero.
//
// Instantiate registers a host module per TISL module that exports every
// function under its boundary name and signature, so a guest linked
// against it fails to instantiate when the two disagree. CheckGuest
// performs the same comparison statically on a compiled guest and reports
// every mismatch at once. Stub encodes a minimal guest importing a whole
// module tree.
package host
