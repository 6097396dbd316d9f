// Package main is the entry point for the cloudweave CLI.
//
// cloudweave is an operator console for machines on a Proxmox hypervisor,
// Google Cloud and AWS. An AI assistant turns requests into proposed actions
// that run only after the operator confirms them.
//
// Commands: ask, chat, clusters, instances, create, catalog, credentials,
// prefs, transcript.
//
// For detailed usage information, run:
//
//	cloudweave --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/cmd/cloudweave/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
