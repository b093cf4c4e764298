package main

import (
	"fmt"
	"os"

	"job-tracker-backend/pkg/security"

	"golang.org/x/crypto/bcrypt"
)

// Prints a bcrypt hash for each password argument, for seeding the
// "authorization" or users table by hand.
//
//	go run ./scripts pw1 pw2
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>...")
		os.Exit(2)
	}

	hasher := security.NewPasswordHasher(bcrypt.DefaultCost)
	for _, pass := range os.Args[1:] {
		hash, err := hasher.Hash(pass)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Printf("Hash: %s\n", hash)
	}
}
