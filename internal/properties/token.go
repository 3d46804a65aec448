// Package properties turns raw incident feed properties into canonical ones:
// it unpacks the overloaded description, normalizes dates to RFC 3339 in
// Sydney time and lowercases enum-like values into dash-joined tokens.
package properties

import "strings"

// ToToken lowercases s after replacing its first space with a dash.
// Only the first space is replaced: "Out Of Control" becomes "out-of control".
func ToToken(s string) string {
	return strings.ToLower(strings.Replace(s, " ", "-", 1))
}
