// Package shared holds utilities used across the converter codebase that do
// not belong to any one domain package.
//
// The testutil subpackage provides test-only helpers, currently a buffered
// slog handler for asserting on structured log output. Nothing under shared
// may import other internal packages.
package shared
