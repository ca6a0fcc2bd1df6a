// Command cfscrape fetches a URL through net/http, or headless Chrome when
// the plain client is unavailable.
// Usage: cfscrape get <url> [--select CSS] | cfscrape post <url> --data JSON
package main

import (
	"os"

	"github.com/raysh454/cfscrape/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
