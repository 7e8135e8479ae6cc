// Package output renders CLI results in table, JSON, or YAML form.
//
// The table formatter turns structs, slices of structs, and maps into
// aligned text through reflection; JSON and YAML delegate to their
// encoders. Pick a formatter with NewFormatter from the -o flag value.
package output
