package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tyrowin/werewolf/internal/server"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	httpPort   string
	tcpPort    string
)

var rootCmd = &cobra.Command{
	Use:   "werewolf-server",
	Short: "Loup-Garou game server",
	Long: `Runs Loup-Garou rooms for clients connecting over WebSocket (/ws)
or raw TCP, both speaking newline-delimited JSON.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := server.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = httpPort
		}
		if cmd.Flags().Changed("tcp-port") {
			cfg.TCPPort = tcpPort
		}
		server.SetConfig(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&httpPort, "port", ":8080", "HTTP/WebSocket listen address")
	rootCmd.Flags().StringVar(&tcpPort, "tcp-port", ":5000", "Raw TCP listen address; empty disables it")
}

func run(ctx context.Context) error {
	log.Println("Starting Loup-Garou server...")
	cfg := server.CurrentConfig()

	reg := server.NewRegistry(cfg.Game.Settings())
	go reg.Run()

	var ln net.Listener
	if cfg.TCPPort != "" {
		var err error
		ln, err = net.Listen("tcp", cfg.TCPPort)
		if err != nil {
			_ = reg.Shutdown(shutdownTimeout)
			return fmt.Errorf("listening on %s: %w", cfg.TCPPort, err)
		}
	}

	httpServer := server.CreateServer(cfg.Port, server.SetupRoutes(reg))
	errs := make(chan error, 2)
	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	if ln != nil {
		go func() {
			if err := server.ServeTCP(ln, reg); err != nil {
				errs <- fmt.Errorf("tcp server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	case runErr = <-errs:
		log.Printf("Server error: %v", runErr)
	}

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("Error closing TCP listener: %v", err)
		}
	}
	if err := reg.Shutdown(shutdownTimeout); err != nil {
		log.Printf("Registry shutdown: %v", err)
	}
	return runErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
