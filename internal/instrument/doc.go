// Package instrument maintains the registry of tracked instruments.
//
// Instrument lists live in plain text files, one symbol per line.
// Blank lines and lines starting with '#' are skipped, symbols are
// uppercased, duplicates dropped, file order preserved. The registry
// can be reloaded at runtime to pick up list edits.
package instrument
