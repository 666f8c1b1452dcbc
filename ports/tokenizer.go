package ports

// Tokenizer issues and verifies the single-use challenge tokens that
// correlate a handshake request with its bridge callback.
type Tokenizer interface {
	// IssueChallenge creates a fresh challenge token bound to the user.
	IssueChallenge(userID int64) (string, error)

	// VerifyChallenge checks the token's signature, expiry and user binding.
	// Any failure is core.ErrInvalidSession.
	VerifyChallenge(token string, userID int64) error
}
