package daraja

import (
	"encoding/base64"
	"time"
)

// stkTimestamp renders t in the YYYYMMDDHHmmss form the provider expects.
func stkTimestamp(t time.Time) string {
	return t.Format("20060102150405")
}

// stkPassword derives the per-request password:
// base64(shortcode + passkey + timestamp).
func stkPassword(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}
