// ChatLens - Chat Export Statistics
//
// ChatLens parses exported instant-messaging chat logs into typed message
// records and reports who talks, when, and about what.
package main

import (
	"os"

	"github.com/ccollicutt/chatlens/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
