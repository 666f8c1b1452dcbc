package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/tonrent/tonrent/ports"
)

const (
	// TopicWalletLinked carries successful handshake completions.
	TopicWalletLinked = "rental.wallet_linked"

	// TopicRented carries committed rentals.
	TopicRented = "rental.rented"
)

// WalletLinkedEvent is published when a user's wallet binding is recorded.
type WalletLinkedEvent struct {
	UserID  int64  `json:"user_id"`
	Address string `json:"address"`
}

// RentedEvent is published when a listing transitions to Rented.
type RentedEvent struct {
	ItemID        string    `json:"item_id"`
	Renter        string    `json:"renter"`
	RentalEndTime time.Time `json:"rental_end_time"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

// PublishWalletLinked publishes a wallet-linked event.
func (p *WatermillPublisher) PublishWalletLinked(ctx context.Context, userID int64, address string) error {
	return p.publish(TopicWalletLinked, WalletLinkedEvent{UserID: userID, Address: address})
}

// PublishRented publishes a rented event.
func (p *WatermillPublisher) PublishRented(ctx context.Context, itemID, renter string, rentalEndTime time.Time) error {
	return p.publish(TopicRented, RentedEvent{ItemID: itemID, Renter: renter, RentalEndTime: rentalEndTime})
}
