// Package handlers implements the psalter HTTP endpoints. Handlers translate
// requests into catalog and credential calls and write JSON bodies; every
// failure goes through the shared HTTPErrorAdapter.
package handlers
