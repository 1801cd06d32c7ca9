// Package guard flips the runtime into test mode before any package init
// that might start network clients. Blank-import it from test files.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PROCUREFLOW_TEST_MODE") == "" {
			_ = os.Setenv("PROCUREFLOW_TEST_MODE", "1")
		}
	})
}
