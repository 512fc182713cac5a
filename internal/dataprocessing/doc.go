// Package dataprocessing parses the two legacy recording formats produced by
// the 1990s acquisition system, ASCII spike/position files and fixed-size
// binary spatial map files, and reconciles every file of one subject-session
// into merged epochs, units, a pooled position trace and a rate map table.
//
// Each file parse is a pure function of that file's bytes; the assembler runs
// them over the discovered file set, collects per-file failures without
// aborting the batch, and then applies the deterministic merge passes.
package dataprocessing
