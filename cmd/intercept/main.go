// Command intercept runs interceptor chain scenarios.
//
// Usage:
//
//	intercept run scenarios/onion_order.yaml
//	intercept test ./scenarios --db runs.db
//	intercept validate ./scenarios
//	intercept trace --db runs.db --failed
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/intercept/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "intercept: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
