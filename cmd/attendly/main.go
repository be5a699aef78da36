// Package main runs one attendly command against the local attendance database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/viant/attendly/internal/cli"
	"github.com/viant/attendly/internal/config"
)

func main() {
	log.SetPrefix("[ATTENDLY] ")
	if _, err := config.LoadDotEnv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), cli.Usage())
		flag.PrintDefaults()
	}
	cfg, err := cli.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, cfg, os.Stdout); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			stop()
			os.Exit(2)
		}
		stop()
		log.Fatalf("%v", err)
	}
}
