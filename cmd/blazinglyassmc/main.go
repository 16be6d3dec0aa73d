package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitInvalidArgs    = 2
	ExitConfigError    = 3
	ExitManifestError  = 4
	ExitDownloadFailed = 5
	ExitStorageError   = 6
	ExitLaunchError    = 7
	ExitVerifyFailed   = 8
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "install":
		return runInstall(cmdArgs)
	case "launch":
		return runLaunch(cmdArgs)
	case "verify":
		return runVerify(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: blazinglyassmc <command> [options]

Commands:
  install   Resolve the version manifest and download missing game content
  launch    Build the classpath and start the game from an instance
  verify    Re-hash every object in the asset store and report corruption

Run 'blazinglyassmc <command> -h' for command-specific help.`)
}
