// Command tokengen mints an identity token for local testing of the chat
// server. It reads JWT_SECRET and JWT_ISSUER the same way the server does.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/Tyrowin/roomchat/internal/identity"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret string `env:"JWT_SECRET,required=true" validate:"required,min=16"`
	JWTIssuer string `env:"JWT_ISSUER,default=roomchat" validate:"required"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	user := flags.String("user", "", "username carried by the token")
	ttl := flags.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", *ttl)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading dotenv: %w", err)
	}
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	token, err := identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer).Issue(*user, *ttl)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}
	fmt.Println(token)
	return nil
}
