package main

import (
	"github.com/faiface/pixel/pixelgl"

	"github.com/nand2emu/hackvm/cmd"
)

func main() {
	// pixelgl needs access to the main thread so this pattern is suggested;
	// `run` is the only subcommand that opens a window, but every subcommand
	// is dispatched through here since pixelgl.Run must own main() itself.
	pixelgl.Run(cmd.Execute)
}
