// Package testing prepares the process environment for packages that load
// configuration or build the full router in tests. Import it for its side
// effects.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

// testEnv holds values applied only when the variable is unset.
var testEnv = map[string]string{
	"ODYSSEY_TEST_MODE": "1",
	"APP_ENV":           "test",
	"SESSION_SECRET":    "test-session-secret",
	"CSRF_SECRET":       "test-csrf-secret",
}

var once sync.Once

func ensureTestEnv() {
	once.Do(func() {
		for key, value := range testEnv {
			if _, ok := os.LookupEnv(key); !ok {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestEnv()
}

// TestMain runs m after the environment is prepared.
func TestMain(m *stdtesting.M) {
	ensureTestEnv()
	os.Exit(m.Run())
}
