package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/top242011/relife-app/internal/config"
	"github.com/top242011/relife-app/internal/directory"
	"github.com/top242011/relife-app/internal/user"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bootstrap the owner admin account and default meeting types",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var defaultMeetingTypes = []directory.CreateEntryInput{
	{Name: "Central Council"},
	{Name: "Committee Meeting"},
	{Name: "General Assembly"},
	{Name: "Working Group"},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Auth.OwnerEmail == "" || cfg.Auth.OwnerPassword == "" {
		return fmt.Errorf("auth.owner_email and auth.owner_password must be set to seed the admin account")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts := user.NewStore(pool)

	// Admin bootstrap is idempotent: an existing credential is left alone.
	if _, err := accounts.GetCredentialByEmail(ctx, cfg.Auth.OwnerEmail); err == nil {
		slog.Info("admin account already exists, skipping", "email", cfg.Auth.OwnerEmail)
	} else if errors.Is(err, user.ErrNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.OwnerPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing owner password: %w", err)
		}
		cred, err := accounts.CreateCredential(ctx, user.CreateCredentialInput{
			Email:        cfg.Auth.OwnerEmail,
			PasswordHash: string(hash),
			Name:         cfg.Auth.OwnerName,
			Role:         user.RoleAdmin,
			Active:       true,
		})
		if err != nil {
			return fmt.Errorf("creating admin account: %w", err)
		}
		slog.Info("created admin account", "id", cred.ID, "email", cred.Email)
	} else {
		return fmt.Errorf("checking admin account: %w", err)
	}

	dir := directory.NewStore(pool)
	existing, err := dir.List(ctx, directory.TableMeetingTypes)
	if err != nil {
		return fmt.Errorf("listing meeting types: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("meeting types already exist, skipping")
		return nil
	}

	for _, in := range defaultMeetingTypes {
		e, err := dir.Create(ctx, directory.TableMeetingTypes, in)
		if err != nil {
			return fmt.Errorf("creating meeting type %q: %w", in.Name, err)
		}
		slog.Info("created meeting type", "name", e.Name, "id", e.ID)
	}

	fmt.Printf("\n=== Seed Complete ===\n")
	fmt.Printf("Admin:         %s\n", cfg.Auth.OwnerEmail)
	fmt.Printf("Meeting types: %d created\n", len(defaultMeetingTypes))
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  curl -X POST http://localhost:8080/api/v1/auth/login -d '{\"email\":\"%s\",\"password\":\"...\"}'\n", cfg.Auth.OwnerEmail)

	return nil
}
