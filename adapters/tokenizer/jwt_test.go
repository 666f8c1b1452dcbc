package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonrent/tonrent/core"
)

func newTestJWT(t *testing.T) *JWT {
	t.Helper()
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return NewJWT(signKey)
}

func TestIssueAndVerifyChallenge(t *testing.T) {
	j := newTestJWT(t)

	token, err := j.IssueChallenge(7)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, j.VerifyChallenge(token, 7))
}

func TestVerifyChallengeWrongUser(t *testing.T) {
	j := newTestJWT(t)

	token, err := j.IssueChallenge(7)
	require.NoError(t, err)

	err = j.VerifyChallenge(token, 8)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestVerifyChallengeTampered(t *testing.T) {
	j := newTestJWT(t)

	token, err := j.IssueChallenge(7)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	err = j.VerifyChallenge(tampered, 7)
	assert.ErrorIs(t, err, core.ErrInvalidSession)

	err = j.VerifyChallenge("not-a-token", 7)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestVerifyChallengeForeignKey(t *testing.T) {
	issuer := newTestJWT(t)
	verifier := newTestJWT(t)

	token, err := issuer.IssueChallenge(7)
	require.NoError(t, err)

	err = verifier.VerifyChallenge(token, 7)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestVerifyChallengeExpired(t *testing.T) {
	j := newTestJWT(t)
	j.ttl = -time.Minute

	token, err := j.IssueChallenge(7)
	require.NoError(t, err)

	err = j.VerifyChallenge(token, 7)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestChallengesAreUnique(t *testing.T) {
	j := newTestJWT(t)

	first, err := j.IssueChallenge(7)
	require.NoError(t, err)
	second, err := j.IssueChallenge(7)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
