//go:build ignore

// generate_secret.go prints fresh secrets for .env and, optionally, a
// development bearer token.
//
//	go run scripts/generate_secret.go
//	go run scripts/generate_secret.go <jwt-secret> <user-id>
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	if len(os.Args) == 3 {
		printToken(os.Args[1], os.Args[2])
		return
	}

	fmt.Println("Paste into .env:")
	fmt.Printf("AUTH_JWT_SECRET=%s\n", randomSecret())
	fmt.Printf("CHECKIN_TOKEN_SECRET=%s\n", randomSecret())
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		fmt.Printf("Failed to read random bytes: %v\n", err)
		os.Exit(1)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// printToken signs a 24h HS256 token whose subject is userID.
func printToken(secret, userID string) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		fmt.Printf("Failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Authorization: Bearer %s\n", signed)
}
