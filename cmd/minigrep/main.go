// minigrep prints the lines of a file that contain a query.
//
//	minigrep <query> <filename>
//	CASE_INSENSITIVE=1 minigrep <query> <filename>
package main

import (
	"os"

	"github.com/corey/minigrep/cmd/minigrep/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
