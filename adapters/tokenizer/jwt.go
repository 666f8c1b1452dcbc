package tokenizer

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tonrent/tonrent/core"
)

const audienceChallenge = "handshake:challenge"

// DefaultChallengeTTL bounds how long a handshake callback stays valid.
const DefaultChallengeTTL = 5 * time.Minute

// JWT issues ES256-signed challenge tokens. Signing the challenge binds the
// bridge callback to the platform key, so a forged callback needs more than
// observing the authorization URL.
type JWT struct {
	signKey *ecdsa.PrivateKey
	ttl     time.Duration
}

// NewJWT creates a challenge tokenizer with the default TTL.
func NewJWT(signKey *ecdsa.PrivateKey) *JWT {
	return &JWT{signKey: signKey, ttl: DefaultChallengeTTL}
}

// IssueChallenge creates a fresh challenge token bound to the user.
func (j *JWT) IssueChallenge(userID int64) (string, error) {
	nonceBytes := make([]byte, 16)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	now := time.Now()
	claims := ChallengeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{audienceChallenge},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Nonce: hex.EncodeToString(nonceBytes),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("signing challenge: %w", err)
	}
	return signed, nil
}

// VerifyChallenge checks the token's signature, expiry and user binding.
func (j *JWT) VerifyChallenge(tokenStr string, userID int64) error {
	token, err := jwt.ParseWithClaims(tokenStr, &ChallengeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(audienceChallenge))
	if err != nil || !token.Valid {
		return core.ErrInvalidSession
	}

	claims, ok := token.Claims.(*ChallengeClaims)
	if !ok || claims.Subject != strconv.FormatInt(userID, 10) {
		return core.ErrInvalidSession
	}
	return nil
}
