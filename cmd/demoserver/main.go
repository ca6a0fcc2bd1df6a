// Command demoserver serves a local site behind a JavaScript challenge, for
// trying cfscrape's two backends against.
// Usage: go run ./cmd/demoserver [--addr :9999] [--delay 500ms] [--log-json]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	pflag "github.com/spf13/pflag"

	"github.com/raysh454/cfscrape/internal/demoserver"
	"github.com/raysh454/cfscrape/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()
	pflag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "listen address")
	pflag.StringVar(&cfg.CookieName, "cookie", cfg.CookieName, "clearance cookie name")
	pflag.DurationVar(&cfg.ChallengeDelay, "delay", cfg.ChallengeDelay, "delay before the challenge script sets the cookie")
	jsonLogs := pflag.Bool("log-json", false, "write logs as JSON lines")
	pflag.Parse()

	if *jsonLogs {
		cfg.Logger = logging.NewJSONLogger(os.Stderr, "demoserver", zerolog.InfoLevel)
	} else {
		cfg.Logger = logging.NewConsoleLogger(os.Stderr, "demoserver", zerolog.InfoLevel)
	}

	fmt.Println("===========================================")
	fmt.Println("   cfscrape demo server")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("  GET  /              challenge page, then the protected page")
	fmt.Println("  POST /api/echo      echoes the body once the challenge is solved")
	fmt.Println("  GET  /status/{code} answers with the given status")
	fmt.Println("  GET  /headers       echoes request headers as JSON")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := demoserver.NewDemoServer(cfg)
	fmt.Printf("  clearance cookie: %s\n\n", server.ClearanceCookie())
	if err := server.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
