package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/printware/printdesk/internal/poller"
)

type options struct {
	server   string
	login    string
	password string
	token    string
	file     string
	bulkID   string
	interval time.Duration
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("bulkwatch", flag.ContinueOnError)
	fs.StringVar(&opts.server, "server", "http://localhost:8080", "printdesk server base URL")
	fs.StringVar(&opts.login, "login", "", "account login")
	fs.StringVar(&opts.password, "password", "", "account password")
	fs.StringVar(&opts.token, "token", "", "pre-issued auth token, skips login")
	fs.StringVar(&opts.file, "file", "", "composite manifest file to upload")
	fs.StringVar(&opts.bulkID, "order", "", "existing bulk order ID to watch")
	fs.DurationVar(&opts.interval, "interval", poller.DefaultInterval, "status poll interval")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.token == "" && (opts.login == "" || opts.password == "") {
		return nil, fmt.Errorf("either -token or -login/-password is required")
	}
	if opts.file == "" && opts.bulkID == "" {
		return nil, fmt.Errorf("either -file or -order is required")
	}
	if opts.file != "" && opts.bulkID != "" {
		return nil, fmt.Errorf("-file and -order are mutually exclusive")
	}
	return opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bulkwatch: %v\n", err)
		os.Exit(2)
	}

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "bulkwatch: %v\n", err)
		os.Exit(1)
	}
}
