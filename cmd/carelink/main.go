package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/apilog"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/config"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/retry"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/services"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/session"
	"github.com/ByDeok/AS-Digt-HC-Dev-FE/pkg/storage"
)

const usage = `carelink - CareLink API client

Usage:
  carelink login <email>    Log in and persist the session
  carelink me               Show the authenticated profile
  carelink today            Show today's action cards
  carelink logout           Discard the local session
`

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	store, err := newStorage(&cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session storage")
	}

	logger := apilog.New(apilog.Config{
		Enabled:         cfg.Logging.Enabled,
		RequestEnabled:  cfg.Logging.RequestEnabled,
		ResponseEnabled: cfg.Logging.ResponseEnabled,
		ErrorEnabled:    cfg.Logging.ErrorEnabled,
		IncludeHeaders:  cfg.Logging.IncludeHeaders,
		IncludeBody:     cfg.Logging.IncludeBody,
		MaxBodyLength:   cfg.Logging.MaxBodyLength,
	})

	client, err := session.New(session.Options{
		BaseURL: cfg.API.BaseURL,
		Storage: store,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "Session expired. Please log in again with 'carelink login'.")
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API client")
	}

	svc := services.New(client)
	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		err = runLogin(ctx, client, os.Args[2:])
	case "me":
		err = runMe(ctx, svc)
	case "today":
		err = runToday(ctx, svc)
	case "logout":
		err = runLogout(client)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("Command failed")
	}
}

// newStorage selects redis-backed storage when an address is configured,
// falling back to the file store under the state directory.
func newStorage(cfg *config.StorageConfig) (storage.Storage, error) {
	if cfg.RedisAddr == "" {
		return storage.NewFile(cfg.StateFile())
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return storage.NewRedis(client, cfg.KeyPrefix)
}

func runLogin(ctx context.Context, client *session.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: carelink login <email>")
	}
	email := args[0]

	password := os.Getenv("CARELINK_PASSWORD")
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	tokens, err := client.Login(ctx, session.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", tokens.User.Name, tokens.User.Email)
	if exp, ok := client.Tokens().AccessTokenExpiry(); ok {
		fmt.Printf("Access token valid until %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func runMe(ctx context.Context, svc *services.Services) error {
	profile, err := retry.DoWithResult(ctx, retry.APIConfig(), func() (services.ProfileResponse, error) {
		return svc.Users.GetMe(ctx)
	})
	if err != nil {
		return err
	}

	fmt.Printf("User ID: %s\n", profile.UserID)
	fmt.Printf("Email:   %s\n", profile.Email)
	fmt.Printf("Role:    %s\n", profile.Role)
	if profile.Name != nil {
		fmt.Printf("Name:    %s\n", *profile.Name)
	}
	if profile.BirthDate != nil {
		fmt.Printf("Born:    %s\n", *profile.BirthDate)
	}
	return nil
}

func runToday(ctx context.Context, svc *services.Services) error {
	cards, err := retry.DoWithResult(ctx, retry.APIConfig(), func() ([]services.ActionCard, error) {
		return svc.Actions.Today(ctx)
	})
	if err != nil {
		return err
	}

	if len(cards) == 0 {
		fmt.Println("No actions scheduled for today.")
		return nil
	}
	for _, card := range cards {
		marker := " "
		switch card.Status {
		case services.ActionCompleted:
			marker = "x"
		case services.ActionSkipped:
			marker = "-"
		}
		fmt.Printf("[%s] %-10s %s\n", marker, card.Category, card.Title)
	}
	return nil
}

func runLogout(client *session.Client) error {
	if err := client.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}
