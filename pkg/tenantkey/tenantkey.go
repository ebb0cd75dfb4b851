// Package tenantkey derives canonical tenant keys from user identities. The
// same derivation runs at signup, login and token validation so an identity
// always routes to the same tenant partition.
package tenantkey

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedIdentity is returned when an identity has no usable domain part.
var ErrMalformedIdentity = errors.New("identity has no domain part")

// Tenant keys double as Postgres schema names, so the derived key is
// restricted to identifier-safe characters.
var keyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// FromIdentity derives the tenant key from an email address:
// jane@acme.io -> acme_io. The key is lowercased: search_path entries are
// unquoted runtime parameters and Postgres downcases them, so a mixed-case
// key would name a schema the connection can never reach.
func FromIdentity(identity string) (string, error) {
	domain, err := DomainOf(identity)
	if err != nil {
		return "", err
	}
	key := strings.ToLower(strings.ReplaceAll(domain, ".", "_"))
	if !keyPattern.MatchString(key) {
		return "", ErrMalformedIdentity
	}
	return key, nil
}

// DomainOf returns the raw domain suffix of an identity.
func DomainOf(identity string) (string, error) {
	parts := strings.SplitN(identity, "@", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", ErrMalformedIdentity
	}
	return parts[1], nil
}
