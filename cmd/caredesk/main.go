// Command caredesk is the CareDesk hospital front-desk client.
package main

import (
	"os"

	"github.com/caredesk/caredesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
