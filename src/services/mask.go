package services

import "strings"

const (
	maskVisible = 4
	maskRun     = "****"
)

// MaskSecret obscures a secret for display. Secrets longer than 8 characters keep
// their first and last four characters around a fixed run of four stars; anything
// shorter is fully replaced so no part of it can be recovered.
func MaskSecret(secret string) string {
	r := []rune(secret)
	if len(r) <= 2*maskVisible {
		return strings.Repeat("*", 2*maskVisible)
	}
	return string(r[:maskVisible]) + maskRun + string(r[len(r)-maskVisible:])
}
