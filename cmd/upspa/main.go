// Command upspa is a thin reference driver around package upspa. It is not
// part of the protocol's trust boundary: it exists to let a developer run
// the setup flow or an end-to-end demo from a shell and see the wire JSON.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "upspa",
	Short: "UpSPA developer CLI",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
