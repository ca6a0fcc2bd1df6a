// Package cli builds the cfscrape command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/raysh454/cfscrape/internal/app"
	"github.com/raysh454/cfscrape/internal/logging"
	"github.com/raysh454/cfscrape/internal/scraper"
)

var exampleUsage = strings.TrimSpace(`
  cfscrape get https://example.com --select "h1"
  cfscrape get https://example.com --select "a.product" --attr href
  cfscrape post https://example.com/api/search --data '{"q":"shoes"}' --header "X-Trace=1"
  cfscrape --config $HOME/.cfscrape/config.toml --proxy https=http://127.0.0.1:8080 get https://example.com
`)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

type rootFlags struct {
	cfgPath  string
	insecure bool
}

type requestFlags struct {
	headers  []string
	selector string
	attr     string
	data     string
}

// NewRootCommand returns the cfscrape command. Response bodies go to stdout and
// logs to stderr. extra options are passed to every scraper, after the ones
// derived from configuration.
func NewRootCommand(stdout, stderr io.Writer, extra ...scraper.Option) *cobra.Command {
	cfg := app.DefaultConfig()
	rf := &rootFlags{}

	root := &cobra.Command{
		Use:           "cfscrape",
		Short:         "Fetch pages behind JavaScript anti-bot challenges",
		Long:          "cfscrape sends GET and POST requests through net/http, falling back to headless Chrome when the plain client cannot be set up.",
		Example:       exampleUsage,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&rf.cfgPath, "config", "", "path to config file (default: $HOME/.cfscrape/config.toml)")
	pf.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent header sent by default")
	pf.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	pf.BoolVar(&rf.insecure, "insecure", false, "skip TLS certificate verification")
	pf.StringToStringVar(&cfg.Proxies, "proxy", cfg.Proxies, "proxy per scheme, e.g. https=http://127.0.0.1:8080 (repeatable)")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	pf.BoolVar(&cfg.Headful, "headful", cfg.Headful, "show the browser window when the Chrome fallback is used")
	pf.BoolVar(&cfg.DropTracking, "drop-tracking", cfg.DropTracking, "strip utm_*, gclid and similar tracking params from the URL")

	run := func(cmd *cobra.Command, method, target string, reqf *requestFlags) error {
		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		if err := loadConfig(&cfg, rf, changed); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		cfg.Target = target

		headers, err := ParseHeaders(reqf.headers)
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}

		logger := logging.NewConsoleLogger(stderr, "cfscrape", logging.ParseLevel(cfg.LogLevel))
		a := app.NewApplication(&cfg, logger, extra...)

		out, err := a.Run(cmd.Context(), app.Request{
			Method:  method,
			Data:    []byte(reqf.data),
			Headers: headers,
			Select:  reqf.selector,
			Attr:    reqf.attr,
		})
		if err != nil {
			return &ExitError{Code: app.ExitCode(err), Err: err}
		}
		_, err = fmt.Fprintln(stdout, out)
		return err
	}

	root.AddCommand(newGetCommand(run), newPostCommand(run))
	return root
}

type runFunc func(cmd *cobra.Command, method, target string, reqf *requestFlags) error

func newGetCommand(run runFunc) *cobra.Command {
	reqf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Send a GET request and print the body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, http.MethodGet, args[0], reqf)
		},
	}
	cmd.Flags().StringArrayVarP(&reqf.headers, "header", "H", nil, "extra header as Key=Value (repeatable)")
	addOutputFlags(cmd, reqf)
	return cmd
}

func newPostCommand(run runFunc) *cobra.Command {
	reqf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "post <url>",
		Short: "Send a JSON POST request and print the body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, http.MethodPost, args[0], reqf)
		},
	}
	cmd.Flags().StringArrayVarP(&reqf.headers, "header", "H", nil, "extra header as Key=Value (repeatable)")
	addOutputFlags(cmd, reqf)
	cmd.Flags().StringVarP(&reqf.data, "data", "d", "", "JSON request body")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func addOutputFlags(cmd *cobra.Command, reqf *requestFlags) {
	cmd.Flags().StringVar(&reqf.selector, "select", "", "print only the text of elements matching this CSS selector")
	cmd.Flags().StringVar(&reqf.attr, "attr", "", "with --select, print this attribute instead of the text")
}

// loadConfig layers the config file and CFSCRAPE_* variables under the flags.
func loadConfig(cfg *app.Config, rf *rootFlags, changed map[string]bool) error {
	cfgFile := rf.cfgPath
	if cfgFile == "" {
		cfgFile = app.DefaultConfigPath()
	}
	if cfgFile != "" && app.FileExists(cfgFile) {
		fc, err := app.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := app.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if rf.cfgPath != "" {
		return fmt.Errorf("config file %s not found", rf.cfgPath)
	}

	if err := app.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	if changed["insecure"] {
		cfg.Verify = !rf.insecure
	}
	return nil
}

// Execute runs the root command with os.Args and returns the exit code.
func Execute() int {
	root := NewRootCommand(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cfscrape:", err)
		var ee *ExitError
		if errors.As(err, &ee) {
			return ee.Code
		}
		return 1
	}
	return 0
}
