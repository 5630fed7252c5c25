package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dob9601/jointhedots/cmd/jtd"
	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := jtd.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, style.ErrorStyle.Render(fmt.Sprintf("Error: %s", errors.Message(err))))
		stop()
		os.Exit(1)
	}
}
