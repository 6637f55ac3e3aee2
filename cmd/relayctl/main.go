package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnavshah/shift-relay-go/pkg/client"
	"github.com/arnavshah/shift-relay-go/pkg/config"
	"github.com/arnavshah/shift-relay-go/pkg/logging"
)

// App holds the CLI dependencies
type App struct {
	cfg    *config.Config
	client *client.Client
	logger   *zap.Logger
	closeLog func() error
	ctx      context.Context
}

var (
	serverURL string
	token     string
	app       *App
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "relayctl",
		Short: "Shift Relay CLI - watch and drive the shift relay",
		Long:  `A terminal client for the shift relay state service: watch the live relay, log employees in and out, and mint master tokens.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(ctx)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "API base URL (default from RELAY_SERVER_URL)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "Master bearer token for admin commands")

	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(employeesCmd())
	rootCmd.AddCommand(tokenCmd())

	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		_ = app.closeLog()
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// initApp sets up config, logger and the API client
func initApp(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := logging.InitLogger(cfg.Env, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	url := cfg.ServerURL
	if serverURL != "" {
		url = serverURL
	}
	opts := []client.Option{client.WithLogger(logger)}
	if token != "" {
		opts = append(opts, client.WithToken(token))
	}

	app = &App{
		cfg:      cfg,
		client:   client.New(url, opts...),
		logger:   logger,
		closeLog: closeLog,
		ctx:      ctx,
	}
	logger.Debug("CLI initialised", zap.String("server", url))
	return nil
}
