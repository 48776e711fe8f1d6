package engine

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// user:password@ in URL-style connection strings.
	urlCredentials = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://)[^\s/@:]+(:[^\s/@]*)?@`)
	// password=... in key/value connection strings.
	kvPassword = regexp.MustCompile(`(?i)(password|passwd|pwd)\s*=\s*('[^']*'|"[^"]*"|\S+)`)
)

// SanitizeMessage strips connection strings and credentials from a driver
// error message so it can be shown to users.
func SanitizeMessage(msg, dsn string) string {
	if dsn != "" {
		msg = strings.ReplaceAll(msg, dsn, "[dsn]")
		if u, err := url.Parse(dsn); err == nil && u.User != nil {
			if pw, ok := u.User.Password(); ok && pw != "" {
				msg = strings.ReplaceAll(msg, pw, "[redacted]")
			}
		}
	}
	msg = urlCredentials.ReplaceAllString(msg, "${1}[redacted]@")
	msg = kvPassword.ReplaceAllString(msg, "${1}=[redacted]")
	return strings.TrimSpace(msg)
}
