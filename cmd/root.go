package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// currentReleaseVersion is used to print the version the user currently has downloaded
const currentReleaseVersion = "v0.1.0"

// targetPlatform names the bytecode family this build of hackvm interprets,
// printed alongside currentReleaseVersion so a bug report always carries both.
const targetPlatform = "Hack VM (nand2tetris bytecode: push/pop/arith/branch/function/call)"

// rootCmd is the base for all commands.
var rootCmd = &cobra.Command{
	Use:   "hackvm [command]",
	Short: "hackvm links and executes Hack-platform VM bytecode",
	Long: "hackvm is a Hack-platform (nand2tetris) virtual machine: it parses a directory of " +
		".vm translation units, links them into a single program image with a built-in OS " +
		"library (Math, Memory, Screen, Output, Keyboard, String, Array, Sys), and drives the " +
		"two-stack interpreter tick by tick against a memory-mapped screen and keyboard.",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires a subcommand: run, debug, or version")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Unknown command. Try `hackvm help` for more information")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	// debugCmd registers itself in cmd/debug.go's own init, alongside its flags.
}

// Execute runs hackvm according to the user's command/subcommand/flags
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
