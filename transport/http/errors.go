package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonrent/tonrent/core"
)

// statusByCode maps stable error codes to HTTP statuses. CODE_RETRIEVAL_FAILED
// gets its own status so the front-end can tell the user the payment went
// through and only the code must be re-requested.
var statusByCode = map[string]int{
	core.CodeInvalidOffer:          http.StatusBadRequest,
	core.CodeInvalidSession:        http.StatusUnauthorized,
	core.CodeNotFound:              http.StatusNotFound,
	core.CodeCodeRetrievalFailed:   http.StatusConflict,
	core.CodeUpstreamUnavailable:   http.StatusBadGateway,
	core.CodeDeploymentFailed:      http.StatusBadGateway,
	core.CodeRentalExecutionFailed: http.StatusBadGateway,
	core.CodeHandshakeTimeout:      http.StatusGatewayTimeout,
}

func writeError(c *gin.Context, err error) {
	code := core.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": err.Error()}})
}

func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "BAD_REQUEST", "message": message}})
}
