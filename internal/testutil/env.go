package testutil

import (
	"os"
	"testing"
)

// WithEnv sets env var to val for the duration of the test scope.
// An empty val unsets the variable.
// Returns a cleanup func to restore previous value.
func WithEnv(t *testing.T, key, val string) func() {
	t.Helper()
	old, had := os.LookupEnv(key)
	if val == "" {
		_ = os.Unsetenv(key)
	} else {
		_ = os.Setenv(key, val)
	}
	return func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	}
}

// ClearEnv unsets each key until the test ends.
func ClearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Cleanup(WithEnv(t, k, ""))
	}
}
