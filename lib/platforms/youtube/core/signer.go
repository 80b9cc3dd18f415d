package core

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"ytfeed/internal/components/assert"
	"ytfeed/internal/components/chrono"
)

var ErrMissingSecretCookie = errors.New("no SAPISID cookie in session, are you signed in?")

// SecretCookieNames lists the cookies that can carry the signing secret, in
// order of preference.
var SecretCookieNames = []string{"__Secure-3PAPISID", "SAPISID", "__Secure-1PAPISID"}

type CookieSource interface {
	Cookie(name string) (string, bool)
}

// SecretCookie returns the first secret cookie present in cookies.
func SecretCookie(cookies CookieSource) (string, error) {
	for _, name := range SecretCookieNames {
		value, ok := cookies.Cookie(name)
		if ok && value != "" {
			return value, nil
		}
	}
	return "", ErrMissingSecretCookie
}

func sha1hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Sign computes the Authorization header value for a call made at unix time
// ts. An empty sessionID produces the single SAPISIDHASH form.
func Sign(ts int64, secret, origin, sessionID string) string {
	tsStr := strconv.FormatInt(ts, 10)
	if sessionID == "" {
		return fmt.Sprintf("SAPISIDHASH %s_%s", tsStr, sha1hex(tsStr+" "+secret+" "+origin))
	}
	digest := fmt.Sprintf(
		"%s_%s_u",
		tsStr,
		sha1hex(sessionID+" "+tsStr+" "+secret+" "+origin),
	)
	return fmt.Sprintf(
		"SAPISIDHASH %s SAPISID1PHASH %s SAPISID3PHASH %s",
		digest, digest, digest,
	)
}

type Signer struct {
	clock  chrono.API
	origin string
}

func NewSigner(clock chrono.API, origin string) Signer {
	assert.NotNil(clock)
	assert.NotEmptyStr(origin)
	return Signer{clock: clock, origin: origin}
}

// Authorization signs a call with the secret cookie found in cookies at the
// current time.
func (s Signer) Authorization(cookies CookieSource, sessionID string) (string, error) {
	secret, err := SecretCookie(cookies)
	if err != nil {
		return "", err
	}
	return Sign(s.clock.Now().Unix(), secret, s.origin, sessionID), nil
}
