// Command advisorjwt mints an advisor bearer token for the API.
//
// It signs with the same JWT_* environment variables the server reads, so a
// token minted here is accepted by a server sharing that configuration:
//
//	JWT_SECRET=... go run ./cmd/advisorjwt -advisor adv-123 -ttl 24h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/meridian-travel/itinerary-api/internal/platform/auth"
	platformclock "github.com/meridian-travel/itinerary-api/internal/platform/clock"
)

func main() {
	_ = godotenv.Load()

	advisor := flag.String("advisor", "", "advisor id to put in the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *advisor == "" {
		log.Fatal("-advisor is required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	authn := auth.New(auth.Config{
		Issuer:   getenv("JWT_ISSUER", "itinerary-api"),
		Audience: getenv("JWT_AUDIENCE", "advisors"),
		Secret:   []byte(secret),
		TokenTTL: *ttl,
	}, platformclock.NewSystemClock())

	tok, err := authn.Mint(*advisor)
	if err != nil {
		log.Fatalf("mint: %v", err)
	}
	fmt.Println(tok)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
