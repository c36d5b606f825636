// Command admintoken mints an admin JWT for operators and local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/forkintheroad/fitr-admin/internal/admin"
)

type tokenConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"fitr-admin"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	email := flag.String("email", "", "Admin email address")
	userID := flag.String("user", "", "Admin user id (defaults to the email)")
	role := flag.String("role", admin.RoleAdmin, "Role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *email == "" {
		return fmt.Errorf("email flag is required")
	}
	if *userID == "" {
		*userID = *email
	}

	var cfg tokenConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	token, err := admin.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, *ttl).GenerateToken(*userID, *email, *role)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Println(token)
	return nil
}
