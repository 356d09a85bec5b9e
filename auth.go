package lmwire

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	authVersion    = 1
	apiTokenPrefix = "sk-lm-"
	passkeyMinLen  = 20
)

// Token ids are exactly 8 alphanumeric characters.
var tokenIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{8}$`)

// AuthDetails is the authentication payload sent as the first frame on
// every newly opened connection.
type AuthDetails struct {
	AuthVersion      int    `json:"authVersion"`
	ClientIdentifier string `json:"clientIdentifier"`
	ClientPasskey    string `json:"clientPasskey"`
}

// guestAuthDetails generates an anonymous guest identity. Both the
// identifier and the passkey are random, so repeated calls never collide.
func guestAuthDetails() *AuthDetails {
	return &AuthDetails{
		AuthVersion:      authVersion,
		ClientIdentifier: "guest:" + uuid.New().String(),
		ClientPasskey:    uuid.New().String(),
	}
}

// parseAPIToken splits and validates an explicit API token of the form
// "sk-lm-<id>:<passkey>". Validation is purely structural; no I/O.
func parseAPIToken(token string) (id, passkey string, err error) {
	rest, ok := strings.CutPrefix(token, apiTokenPrefix)
	if !ok {
		return "", "", &ValidationError{
			Message: fmt.Sprintf("missing %q prefix", apiTokenPrefix),
		}
	}
	id, passkey, ok = strings.Cut(rest, ":")
	if !ok {
		return "", "", &ValidationError{Message: "missing id/passkey separator"}
	}
	if !tokenIDPattern.MatchString(id) {
		return "", "", &ValidationError{
			Message: "id must be exactly 8 alphanumeric characters",
		}
	}
	if len(passkey) < passkeyMinLen {
		return "", "", &ValidationError{
			Message: fmt.Sprintf("passkey must be at least %d characters", passkeyMinLen),
		}
	}
	return id, passkey, nil
}

// authFromToken derives the connection auth payload. An explicitly set
// token takes precedence over the environment; an explicitly set *empty*
// token means "no token" and skips the environment entirely. With no
// usable token at all the result is a fresh guest identity.
func authFromToken(token string, tokenSet bool, envToken string) (*AuthDetails, error) {
	switch {
	case tokenSet:
		if token == "" {
			return guestAuthDetails(), nil
		}
	case envToken != "":
		token = envToken
	default:
		return guestAuthDetails(), nil
	}

	id, passkey, err := parseAPIToken(token)
	if err != nil {
		return nil, err
	}
	return &AuthDetails{
		AuthVersion:      authVersion,
		ClientIdentifier: id,
		ClientPasskey:    passkey,
	}, nil
}
