// Command hackctl administers a hackathon from the terminal: phases and
// countdowns, exports, moderation, the leaderboard, broadcasts, accounts and
// the outbox. It uses the same database and event file as the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hackathon/internal/app"
	"hackathon/internal/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("hackctl_failed", "error", err)
		os.Exit(1)
	}
}

// cli carries the flags every subcommand shares.
type cli struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "hackctl",
		Short:         "Administer a hackathon from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = version
	root.SetVersionTemplate("hackctl {{.Version}}\n")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file to load before reading HACKATHON_* variables")

	root.AddCommand(
		c.migrateCmd(),
		c.phaseCmd(),
		c.countdownCmd(),
		c.exportCmd(),
		c.moderateCmd(),
		c.leaderboardCmd(),
		c.broadcastCmd(),
		c.createAccountCmd(),
		c.outboxCmd(),
	)
	return root
}

func (c *cli) env() (config.Env, error) {
	env, err := config.LoadEnv(c.envFile)
	if err != nil {
		return config.Env{}, err
	}
	app.SetupLogging(env)
	return env, nil
}

func (c *cli) event() (config.Event, error) {
	env, err := c.env()
	if err != nil {
		return config.Event{}, err
	}
	return config.LoadEvent(env.EventFile)
}

// open builds the full app; the caller closes it.
func (c *cli) open() (*app.App, error) {
	env, err := c.env()
	if err != nil {
		return nil, err
	}
	a, err := app.New(env)
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	return a, nil
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func (c *cli) withApp(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := c.open()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
