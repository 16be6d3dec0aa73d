package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/T4rp/blazinglyassmc/internal/launch"
)

func runLaunch(args []string) int {
	fs := flag.NewFlagSet("launch", flag.ExitOnError)

	dir := fs.String("dir", "instance", "Instance directory to launch from")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: blazinglyassmc launch [options]

Read the launcher profile from the instance, build the JVM classpath from
the client jar and the library tree, and start the game.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := launch.LoadConfig(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "[bamc] Run install first to set up the instance")
		return ExitConfigError
	}

	cmd, err := launch.Command(context.Background(), cfg, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitLaunchError
	}

	fmt.Fprintf(os.Stderr, "[bamc] Launching %s as %s\n", cfg.Version, cfg.Username)

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting game: %v\n", err)
		return ExitLaunchError
	}

	return ExitSuccess
}
