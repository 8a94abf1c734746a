// Package common contains shared constants and sentinel errors used across
// hicomm components.
package common

// TokenCookieSuffix is appended to the service name to build the name of the
// cookie that carries the session token, e.g. "hicomm-token".
const TokenCookieSuffix = "-token"

// WithdrawnAuthorName is shown in place of a nickname for content whose
// author account no longer exists.
const WithdrawnAuthorName = "(withdrawn)"

// WithdrawnAuthorID is reported as the author id of such content.
const WithdrawnAuthorID int64 = -1
