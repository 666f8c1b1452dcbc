package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonrent/tonrent/core"
	"github.com/tonrent/tonrent/service"
)

// Handlers contains the HTTP handlers for the rental backend.
type Handlers struct {
	handshake *service.HandshakeService
	rental    *service.RentalService
}

// NewHandlers creates the handler set.
func NewHandlers(handshake *service.HandshakeService, rental *service.RentalService) *Handlers {
	return &Handlers{handshake: handshake, rental: rental}
}

// listingSummary is the wire shape of a listing.
type listingSummary struct {
	ItemID          string     `json:"item_id"`
	OwnerAddress    string     `json:"owner_wallet_address"`
	UnitPrice       int64      `json:"unit_price"`
	PriceTON        string     `json:"price_ton"`
	DurationSeconds int64      `json:"duration_seconds"`
	ContractAddress string     `json:"contract_address"`
	RenterAddress   *string    `json:"renter_wallet_address"`
	RentalEndTime   *time.Time `json:"rental_end_time"`
	State           string     `json:"state"`
}

func toSummary(l core.Listing) listingSummary {
	s := listingSummary{
		ItemID:          l.ItemID,
		OwnerAddress:    l.OwnerAddress,
		UnitPrice:       l.UnitPrice,
		PriceTON:        l.PriceTON(),
		DurationSeconds: l.DurationSeconds,
		ContractAddress: l.ContractAddress,
		RentalEndTime:   l.RentalEndTime,
		State:           string(l.State),
	}
	if l.RenterAddress != "" {
		renter := l.RenterAddress
		s.RenterAddress = &renter
	}
	return s
}

func toSummaries(listings []core.Listing) []listingSummary {
	out := make([]listingSummary, 0, len(listings))
	for _, l := range listings {
		out = append(out, toSummary(l))
	}
	return out
}

// AuthLink starts a handshake and returns the wallet authorization URL.
func (h *Handlers) AuthLink(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		writeBadRequest(c, "user_id must be an integer")
		return
	}

	authURL, err := h.handshake.BeginHandshake(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": authURL})
}

// AuthCallback consumes the bridge callback and completes the handshake.
func (h *Handlers) AuthCallback(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		writeBadRequest(c, "user_id must be an integer")
		return
	}
	state := c.Query("state")
	if state == "" {
		writeBadRequest(c, "state is required")
		return
	}

	if _, err := h.handshake.CompleteHandshake(c.Request.Context(), userID, state); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Authorization successful"})
}

// Wallet returns the user's bound wallet address.
func (h *Handlers) Wallet(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		writeBadRequest(c, "user_id must be an integer")
		return
	}

	address, err := h.handshake.Wallet(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	var wallet *string
	if address != "" {
		wallet = &address
	}
	c.JSON(http.StatusOK, gin.H{"wallet_address": wallet})
}

// Items lists the listings open for rent.
func (h *Handlers) Items(c *gin.Context) {
	listings, err := h.rental.ListAvailable(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaries(listings))
}

// ExternalItems lists the wallet's on-chain NFTs within the configured
// collection.
func (h *Handlers) ExternalItems(c *gin.Context) {
	items, err := h.rental.ExternalItems(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{"token_id": item.ItemID})
	}
	c.JSON(http.StatusOK, out)
}

// Offer creates a listing for an owned item.
func (h *Handlers) Offer(c *gin.Context) {
	var req struct {
		ItemID          string `json:"item_id" binding:"required"`
		WalletAddress   string `json:"wallet_address" binding:"required"`
		UnitPrice       int64  `json:"unit_price" binding:"required"`
		DurationSeconds int64  `json:"duration_seconds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body")
		return
	}

	contract, err := h.rental.Offer(c.Request.Context(), req.WalletAddress, req.ItemID, req.UnitPrice, req.DurationSeconds)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract_address": contract})
}

// Rent rents an available listing and returns the access code.
func (h *Handlers) Rent(c *gin.Context) {
	var req struct {
		ItemID        string `json:"item_id" binding:"required"`
		WalletAddress string `json:"wallet_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body")
		return
	}

	receipt, err := h.rental.Rent(c.Request.Context(), req.ItemID, req.WalletAddress)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"unit_price":      receipt.UnitPrice,
		"rental_end_time": receipt.RentalEndTime.Format(time.RFC3339),
		"auth_code":       receipt.AuthCode,
	})
}

// ReissueCode re-requests the access code for an item the wallet rents.
func (h *Handlers) ReissueCode(c *gin.Context) {
	var req struct {
		ItemID        string `json:"item_id" binding:"required"`
		WalletAddress string `json:"wallet_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "invalid request body")
		return
	}

	code, err := h.rental.ReissueCode(c.Request.Context(), req.ItemID, req.WalletAddress)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_code": code})
}

// Mine returns the wallet's listings split by role.
func (h *Handlers) Mine(c *gin.Context) {
	portfolio, err := h.rental.MyItems(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"owned":  toSummaries(portfolio.Owned),
		"rented": toSummaries(portfolio.Rented),
	})
}
