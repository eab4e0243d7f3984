// Command wishboard fetches guest wishes from a remote guestbook endpoint and
// shows them page by page, over HTTP or in the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rshade/wishboard/internal/cli"
	"github.com/rshade/wishboard/pkg/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
