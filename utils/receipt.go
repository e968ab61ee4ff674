package utils

import (
	"fmt"
	"math/rand"
)

// GenerateReceipt produces a human-readable receipt code, e.g. RCPT-04217.
// The 5-digit space can collide; donations carry a unique index on the
// receipt field and callers regenerate on a duplicate-key insert.
func GenerateReceipt() string {
	return fmt.Sprintf("RCPT-%05d", rand.Intn(100000))
}
