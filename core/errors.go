package core

import "errors"

var (
	ErrInvalidSession        = errors.New("invalid or expired handshake session")
	ErrHandshakeTimeout      = errors.New("timed out waiting for wallet confirmation")
	ErrUpstreamUnavailable   = errors.New("wallet-connect bridge unavailable")
	ErrInvalidOffer          = errors.New("invalid rental offer")
	ErrDeploymentFailed      = errors.New("contract deployment failed")
	ErrNotFound              = errors.New("item not found or not available")
	ErrRentalExecutionFailed = errors.New("rental execution failed")
	ErrCodeRetrievalFailed   = errors.New("access code retrieval failed")
)

// Stable error codes for API clients. The chat front-end branches on these,
// never on message text.
const (
	CodeInvalidSession        = "INVALID_SESSION"
	CodeHandshakeTimeout      = "HANDSHAKE_TIMEOUT"
	CodeUpstreamUnavailable   = "UPSTREAM_UNAVAILABLE"
	CodeInvalidOffer          = "INVALID_OFFER"
	CodeDeploymentFailed      = "DEPLOYMENT_FAILED"
	CodeNotFound              = "NOT_FOUND"
	CodeRentalExecutionFailed = "RENTAL_EXECUTION_FAILED"
	CodeCodeRetrievalFailed   = "CODE_RETRIEVAL_FAILED"
	CodeInternal              = "INTERNAL"
)

// Code maps an error to its stable code, unwrapping as needed.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSession):
		return CodeInvalidSession
	case errors.Is(err, ErrHandshakeTimeout):
		return CodeHandshakeTimeout
	case errors.Is(err, ErrUpstreamUnavailable):
		return CodeUpstreamUnavailable
	case errors.Is(err, ErrInvalidOffer):
		return CodeInvalidOffer
	case errors.Is(err, ErrDeploymentFailed):
		return CodeDeploymentFailed
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrRentalExecutionFailed):
		return CodeRentalExecutionFailed
	case errors.Is(err, ErrCodeRetrievalFailed):
		return CodeCodeRetrievalFailed
	default:
		return CodeInternal
	}
}
