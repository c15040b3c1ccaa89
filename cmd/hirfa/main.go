package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/diya-thabet/hirfa/internal/app"
	"github.com/diya-thabet/hirfa/internal/config"
)

const usage = `usage: hirfa [flags] <command> [args]

commands:
  open <path>                       render any client route, e.g. /jobs?category=plumbing
  login <phone>                     sign in
  register <name> <phone> <role>    create an account (CUSTOMER or PROVIDER)
  logout                            sign out
  whoami                            confirm the session with the server
  dashboard                         your activity at a glance
  lang <ar|fr|en>                   switch language
  jobs [-q text] [-category c]      browse jobs
  job <id>                          job details and bids
  post-job [flags]                  publish a job (customers)
  bid <jobId> <amount> [message]    place a bid (providers)
  accept <jobId> <bidId>            accept a bid (customers)
  status <jobId> <status>           move a job to IN_PROGRESS, COMPLETED or CANCELLED
  feed                              community stories
  story [-media url | -file path] [-caption text]
  chat <jobId>                      chat history for a job
  send <jobId> <receiverId> <text>  send a chat message
  review <jobId> <rating> [comment] [-photo url]
  profile [-name n]                 show or edit your profile
  location <lat> <lon>              share your position (providers)
  nearby <lat> <lon> [radius]       providers around a point

flags:
`

func main() {
	os.Exit(run())
}

func run() (code int) {
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	fs := flag.NewFlagSet("hirfa", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "gateway backend: remote or fixture")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "API base URL for the remote backend")
	fs.StringVar(&cfg.StatePath, "state", cfg.StatePath, "client state file")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "diagnostic log level")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Log.Error().Err(err).Msg("close client state")
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			a.Log.Error().Interface("panic", r).Msg("command crashed")
			fmt.Fprintln(os.Stderr, a.Deps.T.T("common.error"))
			code = 1
		}
	}()

	if err := dispatch(ctx, a, os.Stdout, fs.Arg(0), fs.Args()[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, ue.Error())
			return 2
		}
		a.Log.Debug().Err(err).Str("command", fs.Arg(0)).Msg("command failed")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func usagef(format string, args ...any) error {
	return usageError(fmt.Sprintf(format, args...))
}
