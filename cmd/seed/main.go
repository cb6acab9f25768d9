package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/store-admin/internal/config"
	"github.com/spec-kit/store-admin/internal/observability"
	"github.com/spec-kit/store-admin/internal/persistence"
	"github.com/spec-kit/store-admin/internal/repository"
	"github.com/spec-kit/store-admin/internal/service"
	apperrors "github.com/spec-kit/store-admin/pkg/util/errorutil"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var input service.RegisterInput

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&input.Name, "name", "Administrator", "display name of the account")
	flagSet.StringVar(&input.Email, "email", "", "login email (required)")
	flagSet.StringVar(&input.Password, "password", "", "initial password, at least 6 characters (required)")
	flagSet.StringVar(&input.Role, "role", "ADMINISTRATOR", "ADMINISTRATOR, MANAGER, COLLABORATOR or INTERN")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required to seed accounts")
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
		return err
	}

	accounts := service.NewAccountService(repository.NewSet(pg.PoolHandle()).Accounts, cfg.Auth.BcryptCost)
	account, err := accounts.Register(ctx, input)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			return fmt.Errorf("account %s already exists", input.Email)
		}
		return err
	}

	logger.Info("account seeded",
		zap.String("account_id", account.ID),
		zap.String("email", account.Email),
		zap.String("role", string(account.Role)))
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `seed creates a back-office account directly in the database.

Usage:
  seed --email admin@example.com --password secret1 [flags]

Flags:
%s`, flagSet.FlagUsages())
}
