package auth

import "time"

// Strategy issues and validates the API credential carried by the auth cookie
// or bearer header. Name identifies the strategy in diagnostics.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tunes strategy behaviour; zero values select defaults.
type Options struct {
	TTL time.Duration
}
