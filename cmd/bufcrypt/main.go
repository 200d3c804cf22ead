// Command bufcrypt seals, opens and hashes files with the buffer crypto core,
// locally or through a kms server, and can run that server itself.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
