package geidea

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the UTC layout Geidea expects in signed requests.
const TimestampLayout = "2006/01/02 15:04:05"

// FormatTimestamp renders t in the signing layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatAmount renders amount with exactly two decimals.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Sign computes the request signature: base64(HMAC-SHA256(apiSecret,
// publicKey + amount + currency + merchantReferenceID + timestamp)).
// Field order and amount formatting must match what the gateway verifies.
func Sign(merchantPublicKey string, amount decimal.Decimal, currency, merchantReferenceID, apiSecret, timestamp string) string {
	message := merchantPublicKey + FormatAmount(amount) + currency + merchantReferenceID + timestamp

	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
