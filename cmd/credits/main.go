// Command credits lists accounts and adjusts their credit balances.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"geniusdesign/internal/config"
	"geniusdesign/internal/logging"
	"geniusdesign/internal/storage"
)

type options struct {
	email string
	set   int
	add   int
	list  bool
}

func main() {
	var (
		configPath = flag.String("config", "config.json", "Path to config file")
		opts       options
	)
	flag.StringVar(&opts.email, "email", "", "Account email to update")
	flag.IntVar(&opts.set, "set", -1, "Set the balance to this value")
	flag.IntVar(&opts.add, "add", 0, "Grant this many credits")
	flag.BoolVar(&opts.list, "list", false, "List accounts")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: "info", Encoding: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal("database_url is required to manage credits")
	}

	ctx := context.Background()
	store, err := storage.NewProfileStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect profile store", zap.Error(err))
	}
	defer store.Close()

	if err := run(ctx, store, opts, os.Stdout); err != nil {
		logger.Fatal("Command failed", zap.Error(err))
	}
}

func run(ctx context.Context, store storage.ProfileStore, opts options, out io.Writer) error {
	if opts.list {
		return listProfiles(ctx, store, out)
	}
	if opts.email == "" {
		return errors.New("email is required (use -email)")
	}
	if opts.set < 0 && opts.add == 0 {
		return errors.New("nothing to do (use -set or -add)")
	}

	profile, err := store.GetProfileByEmail(ctx, opts.email)
	if err != nil {
		return fmt.Errorf("find profile: %w", err)
	}

	credits := profile.Credits
	if opts.set >= 0 {
		credits = opts.set
	}
	credits += opts.add
	if credits < 0 {
		credits = 0
	}
	if err := store.SetCredits(ctx, profile.ID, credits); err != nil {
		return fmt.Errorf("update credits: %w", err)
	}

	fmt.Fprintf(out, "Profile %s (%s) credits=%d\n", profile.Email, profile.ID, credits)
	return nil
}

func listProfiles(ctx context.Context, store storage.ProfileStore, out io.Writer) error {
	profiles, err := store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-40s %-8s %-30s\n", "ID", "CREDITS", "EMAIL")
	for _, p := range profiles {
		fmt.Fprintf(out, "%-40s %-8d %-30s\n", p.ID, p.Credits, p.Email)
	}
	return nil
}
