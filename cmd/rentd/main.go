package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/tonrent/tonrent/adapters/chain"
	"github.com/tonrent/tonrent/adapters/events"
	"github.com/tonrent/tonrent/adapters/notify"
	"github.com/tonrent/tonrent/adapters/sessions"
	"github.com/tonrent/tonrent/adapters/store"
	"github.com/tonrent/tonrent/adapters/tokenizer"
	"github.com/tonrent/tonrent/adapters/ton"
	"github.com/tonrent/tonrent/ports"
	"github.com/tonrent/tonrent/service"
	transport "github.com/tonrent/tonrent/transport/http"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx := context.Background()

	// Generate a new ECDSA key pair (you would normally load this from
	// somewhere secure).
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("Failed to generate signing key: %v", err)
	}

	addr := envOr("ADDR", ":8000")
	bridgeURL := envOr("BRIDGE_URL", "http://localhost:3000")
	manifestURL := envOr("MANIFEST_URL", bridgeURL+"/manifest.json")
	callbackBaseURL := envOr("CALLBACK_BASE_URL", "http://localhost:8000")

	// Listing and wallet storage: PostgreSQL when a DSN is configured,
	// otherwise in-memory.
	var (
		listings ports.ListingStore
		wallets  ports.WalletStore
	)
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		pg, err := store.NewPostgres(ctx, dsn)
		if err != nil {
			log.Fatalf("Failed to set up postgres store: %v", err)
		}
		defer pg.Close()
		listings, wallets = pg, pg
	} else {
		mem := store.NewMemory()
		listings, wallets = mem, mem
		log.Println("DATABASE_DSN not set, using in-memory store")
	}

	// Handshake sessions and events: Redis-backed when REDIS_URL is set.
	// In-memory sessions do not survive a restart; that loss is accepted.
	var (
		sessionStore ports.SessionStore
		publisher    message.Publisher
	)
	wmLogger := watermill.NewStdLogger(false, false)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		sessionStore = sessions.NewRedis(redisClient, tokenizer.DefaultChallengeTTL+time.Minute)
		publisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{Client: redisClient}, wmLogger)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
	} else {
		sessionStore = sessions.NewMemory()
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		log.Println("REDIS_URL not set, using in-memory sessions and events")
	}
	eventPub := events.NewWatermillPublisher(publisher)

	var notifier ports.Notifier = notify.Nop{}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		tg, err := notify.NewTelegram(token)
		if err != nil {
			log.Fatalf("Failed to create telegram notifier: %v", err)
		}
		notifier = tg
	}

	connector := ton.NewBridgeClient(bridgeURL)
	inventory := ton.NewTonAPI(
		envOr("TONAPI_URL", "https://tonapi.io"),
		os.Getenv("TONAPI_KEY"),
		os.Getenv("NFT_COLLECTION"),
	)

	// The deterministic capability stands in for the real TON contract
	// client outside production.
	capability := chain.NewLocal()

	handshake := service.NewHandshakeService(
		tokenizer.NewJWT(signKey),
		sessionStore,
		connector,
		wallets,
		notifier,
		eventPub,
		manifestURL,
		callbackBaseURL,
	)
	rental := service.NewRentalService(listings, capability, inventory, eventPub)

	router := transport.SetupRouter(handshake, rental)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
