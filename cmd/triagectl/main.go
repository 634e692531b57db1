// Triagectl is the command line client for a triageboard server: a
// terminal nurse dashboard plus record intake and inspection commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "triagectl",
		Short:         "Nurse dashboard and intake tool for a triageboard server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	registerGlobalFlags(rootCmd)

	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(resetCmd())
	return rootCmd
}
