// cmd/walletctl/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	app "custodial-wallet/internal"
	"custodial-wallet/internal/domain"
	"custodial-wallet/migrations"
)

const usage = `walletctl <command> [flags]

Commands:
  migrate                                       apply the embedded schema
  provision  -email <email> -name <name>        create a user and their wallet
  reconcile  -reference <DEP_...>               verify a pending deposit with Paystack and settle it
  issue-key  -user <uuid> -name <n> -perms deposit,transfer,read -expiry 1M
  token      -user <uuid> -ttl 1h               mint a bearer token
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	application := app.NewApplication()
	if err := application.InitializeCore(ctx); err != nil {
		application.Logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer func() { _ = application.Shutdown(context.Background()) }()

	var err error
	switch os.Args[1] {
	case "migrate":
		err = migrations.Apply(ctx, application.DB)
	case "provision":
		err = provision(ctx, application, os.Args[2:])
	case "reconcile":
		err = reconcile(ctx, application, os.Args[2:])
	case "issue-key":
		err = issueKey(ctx, application, os.Args[2:])
	case "token":
		err = token(application, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		application.Logger.Error("walletctl failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func provision(ctx context.Context, a *app.Application, args []string) error {
	fs := flag.NewFlagSet("provision", flag.ExitOnError)
	email := fs.String("email", "", "user email, passed to the gateway as payer identity")
	name := fs.String("name", "", "display name")
	_ = fs.Parse(args)

	user, wallet, err := a.WalletService.CreateUserAndWallet(ctx, *email, *name)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"user_id":       user.ID,
		"wallet_id":     wallet.ID,
		"wallet_number": wallet.WalletNumber,
	})
}

func reconcile(ctx context.Context, a *app.Application, args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	reference := fs.String("reference", "", "deposit reference")
	_ = fs.Parse(args)

	outcome, err := a.SettlementService.ReconcileDeposit(ctx, *reference)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{"reference": *reference, "outcome": outcome})
}

func issueKey(ctx context.Context, a *app.Application, args []string) error {
	fs := flag.NewFlagSet("issue-key", flag.ExitOnError)
	user := fs.String("user", "", "owner user id")
	name := fs.String("name", "", "key name")
	perms := fs.String("perms", "read", "comma-separated permissions")
	expiry := fs.String("expiry", "1M", "lifetime: <n>H, <n>D, <n>M or <n>Y")
	_ = fs.Parse(args)

	userID, err := uuid.Parse(*user)
	if err != nil {
		return fmt.Errorf("invalid -user: %w", err)
	}
	var permissions []domain.Permission
	for _, p := range strings.Split(*perms, ",") {
		if p = strings.TrimSpace(p); p != "" {
			permissions = append(permissions, domain.Permission(p))
		}
	}

	issued, err := a.APIKeyService.Issue(ctx, userID, *name, permissions, *expiry)
	if err != nil {
		return err
	}
	return printJSON(issued)
}

func token(a *app.Application, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	user := fs.String("user", "", "subject user id")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	_ = fs.Parse(args)

	userID, err := uuid.Parse(*user)
	if err != nil {
		return fmt.Errorf("invalid -user: %w", err)
	}
	signed, err := a.TokenVerifier.Issue(userID, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(signed)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
