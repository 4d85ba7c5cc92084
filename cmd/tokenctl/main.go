// Command tokenctl mints and revokes access tokens with the server's shared
// secret and redis blacklist.
//
//	tokenctl [-config path] mint -user ID -role admin|instructor|family -coop ID
//	tokenctl [-config path] revoke -token TOKEN
//	tokenctl [-config path] status -jti ID
//
// Minting is for local development without the co-op auth service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mdavis72884/bramble-claude-sub001/config"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/jwt"
	applogger "github.com/mdavis72884/bramble-claude-sub001/pkg/logger"
	"github.com/mdavis72884/bramble-claude-sub001/pkg/redis"
)

const usage = "usage: tokenctl [-config path] mint|revoke|status [flags]"

var errUsage = errors.New(usage)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tokenctl", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (default: ./config/config.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mgr := jwt.NewManager(&cfg.Auth)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "mint" {
		return mint(mgr, rest, out)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	switch cmd {
	case "revoke":
		return revoke(ctx, mgr, rdb, rest, out)
	case "status":
		return status(ctx, rdb, rest, out)
	default:
		return errUsage
	}
}

// mint prints a signed access token.
func mint(mgr *jwt.Manager, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	userID := fs.String("user", "", "user id")
	role := fs.String("role", jwt.RoleFamily, "admin, instructor or family")
	coopID := fs.String("coop", "", "co-op id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *userID == "" || *coopID == "" {
		return errors.New("mint: -user and -coop are required")
	}
	switch *role {
	case jwt.RoleAdmin, jwt.RoleInstructor, jwt.RoleFamily:
	default:
		return fmt.Errorf("mint: unknown role %q", *role)
	}

	token, err := mgr.GenerateAccessToken(*userID, *role, *coopID)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}

// revoke blacklists a token until it would have expired.
func revoke(ctx context.Context, mgr *jwt.Manager, rdb *redis.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	token := fs.String("token", "", "access token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	claims, err := mgr.ParseToken(*token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		fmt.Fprintln(out, "token already expired")
		return nil
	}
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return errors.New("revoke: token has no id or expiry")
	}

	ttl := time.Until(claims.ExpiresAt.Time).Round(time.Second)
	if err := rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	fmt.Fprintf(out, "revoked %s for %s\n", claims.ID, ttl)
	return nil
}

// status reports whether a token id is revoked.
func status(ctx context.Context, rdb *redis.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	jti := fs.String("jti", "", "token id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jti == "" {
		return errors.New("status: -jti is required")
	}

	ttl, err := rdb.BlacklistTTL(ctx, *jti)
	if errors.Is(err, redis.ErrNotFound) {
		fmt.Fprintf(out, "%s not revoked\n", *jti)
		return nil
	}
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	fmt.Fprintf(out, "%s revoked for another %s\n", *jti, ttl)
	return nil
}
