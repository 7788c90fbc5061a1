// Command devtoken prints a signed access token for local development. The
// signing secret comes from the server configuration (env, .env, -c, -s).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/notehub/internal/flagx"
	"github.com/dmitrijs2005/notehub/internal/server/auth"
	"github.com/dmitrijs2005/notehub/internal/server/config"
	"github.com/dmitrijs2005/notehub/internal/server/models"
)

var tokenFlags = []string{"-user", "-name", "-ttl"}

func run(args []string, secret string, out io.Writer) error {
	var caller models.Caller
	var ttl time.Duration

	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&caller.ID, "user", "", "user id to embed (required)")
	fs.StringVar(&caller.Username, "name", "", "display name to embed")
	fs.DurationVar(&ttl, "ttl", 24*time.Hour, "token validity")

	if err := fs.Parse(flagx.FilterArgs(args, tokenFlags)); err != nil {
		return err
	}
	if caller.ID == "" {
		return errors.New("-user is required")
	}
	if ttl <= 0 {
		return errors.New("-ttl must be positive")
	}

	tok, err := auth.GenerateToken(caller, []byte(secret), ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(os.Args[1:], cfg.SecretKey, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}
