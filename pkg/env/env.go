// Package env holds the small lookup helpers used before config is loaded.
// Everything after bootstrap reads from pkg/config instead; only concerns
// that must resolve earlier (logger output format) come through here.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
