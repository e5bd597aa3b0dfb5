// Package attendance: tokens.go issues and verifies check-in tokens.
//
// A token is stateless:
//
//	base64url(meetupID|expiresUnix|nonce) "." base64url(blake2b-256 keyed MAC)
//
// so verification needs only the secret, not storage.
package attendance

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
)

var b64 = base64.RawURLEncoding

// TokenSigner signs tokens with a keyed BLAKE2b MAC.
type TokenSigner struct {
	key [32]byte
	ttl time.Duration
}

// NewTokenSigner derives the MAC key from secret.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{key: blake2b.Sum256([]byte(secret)), ttl: ttl}
}

// Issue returns a token for meetupID valid until now+ttl.
func (s *TokenSigner) Issue(meetupID string, now time.Time) Token {
	expires := now.Add(s.ttl).Truncate(time.Second)
	payload := []byte(meetupID + "|" + strconv.FormatInt(expires.Unix(), 10) + "|" + uuid.NewString())
	return Token{
		Value:     b64.EncodeToString(payload) + "." + b64.EncodeToString(s.mac(payload)),
		MeetupID:  meetupID,
		ExpiresAt: expires.UTC(),
	}
}

// Verify checks the signature, the meetup binding and the expiry.
// Every failure is common.ErrInvalidToken.
func (s *TokenSigner) Verify(token, meetupID string, now time.Time) error {
	encPayload, encMAC, ok := strings.Cut(token, ".")
	if !ok {
		return common.ErrInvalidToken
	}
	payload, err := b64.DecodeString(encPayload)
	if err != nil {
		return common.ErrInvalidToken
	}
	mac, err := b64.DecodeString(encMAC)
	if err != nil {
		return common.ErrInvalidToken
	}
	if subtle.ConstantTimeCompare(mac, s.mac(payload)) != 1 {
		return common.ErrInvalidToken
	}

	parts := bytes.Split(payload, []byte("|"))
	if len(parts) != 3 || string(parts[0]) != meetupID {
		return common.ErrInvalidToken
	}
	expires, err := strconv.ParseInt(string(parts[1]), 10, 64)
	if err != nil || now.Unix() > expires {
		return common.ErrInvalidToken
	}
	return nil
}

func (s *TokenSigner) mac(payload []byte) []byte {
	h, _ := blake2b.New256(s.key[:]) // only fails for keys over 64 bytes
	h.Write(payload)
	return h.Sum(nil)
}
