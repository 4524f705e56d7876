package transaction

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// invoiceNumber mints a sortable receipt identifier. The random tail keeps
// two tills that ring up the same millisecond apart.
func invoiceNumber() string {
	now := time.Now().UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("INV-%s-%03d-%04d", datePart, millis, n.Int64())
}
