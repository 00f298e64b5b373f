// Package cpu implements the r9 processor and its assembler.
//
// The processor has nine 32-bit registers (a, b, c, d, e, f, sp, bp, ip),
// a flat little-endian byte memory, and a fixed 6-byte instruction word.
// Every memory access is bounds checked over its full span. Faults are
// latched: once the processor has faulted, every further step returns the
// same fault until the owner calls Reset.
//
// The processor never advances the instruction pointer on its own inside
// Step; the caller (or Tick) advances it by INSTRUCTION_SIZE after every
// OUTCOME_CONTINUE.
//
// The assembler provides a small assembly language for the r9 instruction
// set, supporting macros, labels, equates, raw data and compile-time
// expression evaluation.
package cpu
