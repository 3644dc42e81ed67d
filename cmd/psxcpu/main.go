package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"github.com/schawnndev/psxcpu/internal/bus"
	"github.com/schawnndev/psxcpu/internal/mips"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	biosPath := flag.String("bios", "", "path to a 512 KiB PSX BIOS image")
	step := flag.Bool("step", false, "single-step interactively, printing CPU state between instructions")
	flag.Parse()

	printIfVerbose(*verbose, "Loading BIOS image from %s...", *biosPath)
	image, err := bus.LoadBIOSImage(*biosPath)
	if err != nil {
		log.Fatalf("loading bios image: %v", err)
	}

	b, err := bus.New(image, log.Default())
	if err != nil {
		log.Fatalf("building interconnect: %v", err)
	}

	printIfVerbose(*verbose, "Starting CPU...")
	cpu := mips.NewCPU(b, log.Default())

	if *step {
		runInteractive(cpu)
		return
	}

	done := make(chan struct{})
	var faultErr any

	printIfVerbose(*verbose, "Running CPU...")
	start := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				faultErr = r
			}
			close(done)
		}()
		for {
			cpu.Step()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		printIfVerbose(*verbose, "Signal received, stopping CPU...")
	case <-done:
		if faultErr != nil {
			log.Fatalf("cpu halted: %v", faultErr)
		}
	}

	printIfVerbose(*verbose, "CPU stopped. Total execution time: %s", time.Since(start))
}

// runInteractive steps the CPU one instruction at a time, printing the PC
// (registers are not printed), and waiting for a keypress before
// continuing. A raw terminal is needed so a single keystroke advances
// execution without waiting for Enter.
func runInteractive(cpu *mips.CPU) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			log.Fatalf("putting terminal in raw mode: %v", err)
		}
		defer term.Restore(int(os.Stdin.Fd()), oldState)
	}

	fmt.Println("single-step mode: any key steps, Ctrl-C exits")
	for {
		fmt.Printf("pc=0x%08X\n", cpu.PC())

		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("cpu halted: %v\n", r)
					os.Exit(1)
				}
			}()
			cpu.Step()
		}()

		_, key, err := keyboard.GetSingleKey()
		if err != nil {
			log.Fatalf("reading keypress: %v", err)
		}
		if key == keyboard.KeyCtrlC {
			return
		}
	}
}

// printIfVerbose prints a formatted message if verbose is true.
func printIfVerbose(verbose bool, format string, v ...interface{}) {
	if verbose {
		log.Printf(format, v...)
	}
}
