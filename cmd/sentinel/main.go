// The sentinel binary runs the detection pipeline offline against a graph
// snapshot file.
package main

import (
	"os"

	"github.com/turtacn/GraphSentinel/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
