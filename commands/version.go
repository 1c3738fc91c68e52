package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

// VERSION is the dispatcher release, stamped by the build:
//
//	go build -ldflags "-X github.com/opgaveflyt/opgaveflyt-dispatcher/commands.VERSION=v1.2.3" ./cmd/opgaveflyt-dispatcher
var VERSION = "v0.1.0"

var VersionCmd = Version{
	out: os.Stdout,
}

// Version prints the dispatcher release so that an orchestrator log entry can be
// matched to the build that wrote it. With --debug it also prints the Go
// toolchain and VCS revision embedded in the binary.
type Version struct {
	out io.Writer
}

func (cmd *Version) Name() string {
	return "version"
}

func (cmd *Version) Description() string {
	return "Prints the dispatcher release"
}

func (cmd *Version) Usage() string {
	return ""
}

func (cmd *Version) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] version\n", APP)
	fmt.Println()
	fmt.Println("  Prints the dispatcher release e.g. v0.1.0. With --debug, also prints the Go version and")
	fmt.Println("  the commit the binary was built from")
	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s version\n", APP)
	fmt.Printf("    %s --debug version\n", APP)
	fmt.Println()
}

func (cmd *Version) FlagSet() *flag.FlagSet {
	return flag.NewFlagSet("version", flag.ContinueOnError)
}

func (cmd *Version) Execute(ctx context.Context, options *Options) error {
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}

	fmt.Fprintln(out, VERSION)

	if options != nil && options.Debug {
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprintf(out, "  go:       %v\n", info.GoVersion)
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" || s.Key == "vcs.modified" {
					fmt.Fprintf(out, "  %-9s %v\n", s.Key+":", s.Value)
				}
			}
		}
	}

	return nil
}
