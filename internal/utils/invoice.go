package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateOrderReference returns a human-readable order number such as
// CMD-20261018-153000-123-4567, quoted to customers in emails.
func GenerateOrderReference() string {
	now := time.Now().UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf(
		"CMD-%s-%03d-%04d",
		datePart,
		millis,
		n.Int64(),
	)
}
