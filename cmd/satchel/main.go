package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/satchelhq/satchel/internal/profile"
	"github.com/satchelhq/satchel/internal/version"
	"github.com/satchelhq/satchel/server"
	"github.com/satchelhq/satchel/store"
	"github.com/satchelhq/satchel/store/db"
)

const greetingBanner = `
 ____        _       _          _
/ ___|  __ _| |_ ___| |__   ___| |
\___ \ / _' | __/ __| '_ \ / _ \ |
 ___) | (_| | || (__| | | |  __/ |
|____/ \__,_|\__\___|_| |_|\___|_|
`

var rootCmd = &cobra.Command{
	Use:   "satchel",
	Short: "A self-hosted study companion: Canvas coursework sync with AI assistance",
	Run: func(_ *cobra.Command, _ []string) {
		ctx, cancel := context.WithCancel(context.Background())
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			InstanceURL: viper.GetString("instance-url"),
			Version:     version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			cancel()
			slog.Error("invalid server profile", "error", err)
			return
		}

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			cancel()
			slog.Error("failed to create db driver", "error", err)
			return
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			cancel()
			slog.Error("failed to migrate db", "error", err)
			return
		}

		s, err := server.NewServer(instanceProfile, storeInstance)
		if err != nil {
			cancel()
			slog.Error("failed to create server", "error", err)
			return
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM.
		// The default signal sent by the `kill` command is SIGTERM,
		// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-c
			slog.Info("received signal, shutting down", "signal", sig.String())
			s.Shutdown(ctx)
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil {
			if err != http.ErrServerClosed {
				slog.Error("failed to start server", "error", err)
				cancel()
			}
		}

		// Wait for CTRL-C.
		<-ctx.Done()
	},
}

func init() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("satchel")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of your satchel instance")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf(`---
Server profile
version: %s
data: %s
dsn: %s
addr: %s
port: %d
mode: %s
driver: %s
---
`, profile.Version, profile.Data, profile.DSN, profile.Addr, profile.Port, profile.Mode, profile.Driver)

	print(greetingBanner)
	fmt.Printf("Version %s has been started on port %d\n", profile.Version, profile.Port)
	if profile.IsCanvasEnabled() {
		fmt.Printf("Canvas sync enabled for %s\n", profile.CanvasBaseURL)
	}
	if profile.IsAIEnabled() {
		fmt.Println("AI assistance enabled")
	}
	fmt.Println("---")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
