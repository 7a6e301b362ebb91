// Command bagdraw deals items out of a bag randomizer and prints them, one per
// line. By default it deals the seven tetrominoes.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
