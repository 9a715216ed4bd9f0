// Package abi describes how TISL values cross the boundary between a WASM
// guest and its host.
//
// The boundary convention is fixed:
//
//   - Every function is imported by the guest as "__<name>" from a module
//     named after the TISL module.
//   - Arguments are passed flat: scalars by value, strings as a pointer to
//     a NUL-terminated buffer, lists as a pointer and length, records as a
//     pointer to their packed wire layout, enums as an i32 discriminant.
//   - Every return value gets an out pointer, plus an out length pointer
//     for lists and strings. The host writes results through them.
//   - The single result is 0 on success or a pointer to an error message.
//
// Pointers and lengths use the "size" wire type, i64 by default or i32 for
// 32-bit guests (see Config).
//
// Records are packed without padding. Lists and strings take a
// pointer/length pair, nested records are inlined, enums and bools take one
// byte. Layout computes these sizes and the Planner turns a function's
// return values into the write and allocation operations a host must
// perform to hand them back to the guest.
package abi
