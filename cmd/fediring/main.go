package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lmorchard/fediring-manager/internal/biz"
	"github.com/lmorchard/fediring-manager/internal/biz/usecase"
	"github.com/lmorchard/fediring-manager/internal/conf"
	"github.com/lmorchard/fediring-manager/internal/data"
	"github.com/lmorchard/fediring-manager/internal/infra/fediverse"
	"github.com/lmorchard/fediring-manager/internal/server"
	"github.com/lmorchard/fediring-manager/internal/service"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fediring",
		Short: "Mention-driven management bot for a fediverse webring",
	}
	rootCmd.AddCommand(runCmd(), mentionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot: stream mentions and fire scheduled tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				log.Fatalf("Failed to build application: %v", err)
			}
			defer app.close()

			srv := server.NewBotServer(app.fediClient, app.router, app.scheduler)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-sigCh
				fmt.Println("\nShutting down...")
				srv.Stop()
			}()

			fmt.Println("Starting fediring manager...")
			err = srv.Start(cmd.Context())
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatalf("Server error: %v", err)
			}
			return nil
		},
	}
}

func mentionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mention",
		Short: "Broadcast one random member mention and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				log.Fatalf("Failed to build application: %v", err)
			}
			defer app.close()

			if err := app.handlers.MentionMembers(cmd.Context()); err != nil {
				log.Fatalf("Mention broadcast failed: %v", err)
			}
			return nil
		},
	}
}

// app holds the wired application components.
type app struct {
	cfg        *conf.Config
	fediClient *fediverse.Client
	repos      *data.Repositories
	handlers   *service.Handlers
	router     *service.Router
	scheduler  *service.Scheduler
}

func buildApp() (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	templatesCfg, err := conf.LoadTemplatesConfig(cfg.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	renderer, err := service.NewRenderer(templatesCfg)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	fediClient := fediverse.NewClient(cfg.Server.URL, cfg.Server.AccessToken)

	repos, err := data.NewRepositories(fediClient, cfg)
	if err != nil {
		return nil, fmt.Errorf("create repositories: %w", err)
	}

	usecases := &biz.Usecases{
		Gate:   usecase.NewPermissionGate(cfg.AdminAccounts),
		Ledger: usecase.NewLedgerUsecase(repos.State, conf.StateNamespace),
		Selector: usecase.NewSelectorUsecase(
			repos.Profile, repos.State, conf.StateNamespace, cfg.State.MaxHistoryRatio),
		Members: usecase.NewMembersUsecase(repos.Profile),
	}

	handlers := service.NewHandlers(
		usecases.Gate,
		usecases.Ledger,
		usecases.Selector,
		usecases.Members,
		renderer,
		repos.Status,
		cfg.Mention.Count,
	)

	router := service.NewRouter(renderer, repos.Status)
	handlers.RegisterAll(router)

	scheduler := service.NewScheduler(
		repos.Profile,
		repos.State,
		handlers,
		conf.StateNamespace,
		cfg.Ring.UpdateInterval,
		cfg.Mention.Interval,
	)

	return &app{
		cfg:        cfg,
		fediClient: fediClient,
		repos:      repos,
		handlers:   handlers,
		router:     router,
		scheduler:  scheduler,
	}, nil
}

func (a *app) close() {
	if err := a.repos.State.Close(); err != nil {
		fmt.Printf("[Main] Error closing state store: %v\n", err)
	}
}
