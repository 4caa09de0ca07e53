package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nand2emu/hackvm/internal/hackvm"
)

var debugSteps int

// debugCmd runs a program headlessly (no window) for a fixed instruction
// budget and prints the final debug dump and profile, useful for CI and for
// inspecting a program without a display backend.
var debugCmd = &cobra.Command{
	Use:   "debug `path/to/rom-dir`",
	Short: "run a program headlessly and print its final debug dump",
	Args:  cobra.ExactArgs(1),
	Run:   runDebug,
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().IntVar(&debugSteps, "steps", 1_000_000, "maximum total instructions to execute")
}

func runDebug(cmd *cobra.Command, args []string) {
	vm := hackvm.NewVM()
	if err := loadROMDir(vm, args[0]); err != nil {
		fmt.Printf("\nerror loading %s: %v\n", args[0], err)
		os.Exit(1)
	}
	if err := vm.Init(); err != nil {
		fmt.Printf("\nerror linking program: %v\n", err)
		os.Exit(1)
	}

	const batch = 10_000
	total := 0
	for total < debugSteps && vm.Status() == hackvm.StatusRunning {
		step := batch
		if rem := debugSteps - total; rem < step {
			step = rem
		}
		n, _ := vm.TickProfiled(step)
		total += n
		if n == 0 {
			break
		}
	}

	fmt.Println(vm.GetDebug())
	if stats, err := vm.GetStats(); err == nil {
		fmt.Printf("profile: %s\n", stats)
	}
}
