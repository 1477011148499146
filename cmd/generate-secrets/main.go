package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/smarttransit/walkin-pos/internal/utils"
	"github.com/smarttransit/walkin-pos/pkg/jwt"
)

func main() {
	secret := flag.String("secret", "", "sign a development token with this JWT_SECRET instead of generating one")
	phone := flag.String("phone", "0771234567", "phone claim for the development token")
	roles := flag.String("roles", string(models.RoleTicketer), "comma separated role claims")
	ttl := flag.Duration("ttl", 12*time.Hour, "development token lifetime")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("Walk-in POS Secret Generator")
	fmt.Println("===========================================")
	fmt.Println()

	if *secret == "" {
		generated, err := utils.GenerateSecret(32)
		if err != nil {
			log.Fatalf("Failed to generate secret: %v", err)
		}
		*secret = generated
		fmt.Println("Add this to your .env file:")
		fmt.Println()
		fmt.Printf("JWT_SECRET=%s\n", generated)
		fmt.Println()
	}

	userID := uuid.New()
	token, err := jwt.NewService(*secret, *ttl).GenerateAccessToken(userID, *phone, strings.Split(*roles, ","))
	if err != nil {
		log.Fatalf("Failed to sign development token: %v", err)
	}

	fmt.Printf("Development token for user %s (roles: %s, expires in %s):\n", userID, *roles, ttl.String())
	fmt.Println()
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Never use development tokens against production.")
	fmt.Println("===========================================")
}
