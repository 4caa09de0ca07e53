package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nand2emu/hackvm/internal/display"
	"github.com/nand2emu/hackvm/internal/hackvm"
)

var (
	batchSize  int
	refreshHz  int
	profileRun bool
)

// runCmd loads every .vm file in a directory, links them, and drives the
// emulator against a real window until the user closes it. Once the VM halts
// or faults, its debug dump is printed once and the last frame stays shown.
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom-dir`",
	Short: "run the hackvm emulator against a directory of .vm files",
	Args:  cobra.ExactArgs(1),
	Run:   runHackVM,
}

func init() {
	runCmd.Flags().IntVar(&batchSize, "batch", 1000, "instructions executed per host tick")
	runCmd.Flags().IntVar(&refreshHz, "refresh-hz", display.RefreshRate, "host render/tick rate in hertz")
	runCmd.Flags().BoolVar(&profileRun, "profile", false, "accumulate per-function instruction counts")
}

func runHackVM(cmd *cobra.Command, args []string) {
	romDir := args[0]

	vm := hackvm.NewVM()
	if err := loadROMDir(vm, romDir); err != nil {
		fmt.Printf("\nerror loading %s: %v\n", romDir, err)
		os.Exit(1)
	}
	if err := vm.Init(); err != nil {
		fmt.Printf("\nerror linking program: %v\n", err)
		os.Exit(1)
	}

	win, err := display.NewWindow()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ticker := display.NewTicker(refreshHz)
	defer ticker.Stop()

	reported := false
	for range ticker.C {
		if win.Closed() {
			fmt.Println("exit signal detected, gracefully shutting down...")
			break
		}

		vm.SetKeyboard(win.PressedKeyCode())

		if vm.Status() == hackvm.StatusRunning {
			if profileRun {
				_, _ = vm.TickProfiled(batchSize)
			} else {
				_, _ = vm.Tick(batchSize)
			}
		}
		if vm.Status() != hackvm.StatusRunning && !reported {
			fmt.Println(vm.GetDebug())
			reported = true
		}

		vm.DrawScreen(win)
		win.UpdateInput()
		win.HandleKeyInput()
	}

	if profileRun {
		if stats, err := vm.GetStats(); err == nil {
			fmt.Printf("profile: %s\n", stats)
		}
	}
}

// loadROMDir feeds every *.vm file in dir to vm.LoadFile, in lexical order
// so static-segment assignment (spec §4.2) is deterministic across runs.
func loadROMDir(vm *hackvm.VM, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".vm") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return fmt.Errorf("no .vm files found in %s", dir)
	}
	for _, name := range names {
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := vm.LoadFile(name, string(text)); err != nil {
			return err
		}
	}
	return nil
}
