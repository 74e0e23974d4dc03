// admin-token mints host and admin tokens for the guildhall API. It can also
// generate the RSA key pair and hash a shared host key for HOST_API_KEY_HASH.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/guildhall/pkg/jwt"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("admin-token", pflag.ContinueOnError)
	privateKeyPath := flags.StringP("key", "k", "./keys/private.pem", "path to JWT private key")
	publicKeyPath := flags.String("public-key", "./keys/public.pem", "path to JWT public key (with --generate)")
	subject := flags.StringP("subject", "s", "survival-1", "host or operator name for the token")
	role := flags.StringP("role", "r", jwt.RoleAdmin, "token role: host or admin")
	issuer := flags.String("issuer", "guildhall", "JWT issuer")
	expMins := flags.Int("exp", 60*24*7, "token expiration in minutes")
	outputJSON := flags.Bool("json", false, "output as JSON")
	generate := flags.Bool("generate", false, "generate a new key pair before signing")
	hashKey := flags.String("hash-key", "", "print the bcrypt hash of a shared host key and exit")

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if *hashKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*hashKey), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash key: %w", err)
		}
		fmt.Printf("HOST_API_KEY_HASH=%s\n", hash)
		return nil
	}

	if *role != jwt.RoleHost && *role != jwt.RoleAdmin {
		return fmt.Errorf("unknown role %q", *role)
	}

	if *generate {
		if err := jwt.GenerateKeyPair(*privateKeyPath, *publicKeyPath); err != nil {
			return fmt.Errorf("generate keys: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s and %s\n", *privateKeyPath, *publicKeyPath)
	}

	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: *privateKeyPath,
		Issuer:         *issuer,
		ExpirationMins: *expMins,
	})
	if err != nil {
		return fmt.Errorf("create JWT service: %w (generate keys with --generate)", err)
	}

	token, err := jwtService.Sign(jwt.Claims{Subject: *subject, Role: *role})
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   *expMins * 60,
			"subject":      *subject,
			"role":         *role,
		})
	}

	expTime := time.Now().Add(time.Duration(*expMins) * time.Minute)
	fmt.Println("Token Generated")
	fmt.Println("===============")
	fmt.Printf("Subject:  %s\n", *subject)
	fmt.Printf("Role:     %s\n", *role)
	fmt.Printf("Expires:  %s\n", expTime.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s...' http://localhost:8080/v1/guilds\n", token[:min(len(token), 50)])
	return nil
}
