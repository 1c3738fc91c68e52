package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/commands"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
)

func flags() (*pflag.FlagSet, *string, *time.Duration, *bool) {
	flagset := pflag.NewFlagSet("dispatch", pflag.ContinueOnError)

	queue := flagset.String("queue", "NovaOpgaveFlyt", "")
	timeout := flagset.Duration("timeout", 60*time.Second, "")
	dryrun := flagset.Bool("dryrun", false, "")

	return flagset, queue, timeout, dryrun
}

func TestBindFromEnvironment(t *testing.T) {
	t.Setenv("OPGAVEFLYT_QUEUE", "TestQueue")
	t.Setenv("OPGAVEFLYT_DRYRUN", "true")

	v, err := load("")
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	flagset, queue, timeout, dryrun := flags()
	if err := bind(v, flagset); err != nil {
		t.Fatalf("Unexpected error binding configuration (%v)", err)
	}

	if *queue != "TestQueue" {
		t.Errorf("Incorrect queue\n   expected: %v\n   got:      %v", "TestQueue", *queue)
	}

	if !*dryrun {
		t.Errorf("Expected dryrun to be set from the environment")
	}

	if *timeout != 60*time.Second {
		t.Errorf("Incorrect timeout\n   expected: %v\n   got:      %v", 60*time.Second, *timeout)
	}
}

func TestBindFromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dispatcher.yaml")
	if err := os.WriteFile(file, []byte("queue: FileQueue\ntimeout: 15s\n"), 0600); err != nil {
		t.Fatalf("%v", err)
	}

	v, err := load(file)
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	flagset, queue, timeout, _ := flags()
	if err := bind(v, flagset); err != nil {
		t.Fatalf("Unexpected error binding configuration (%v)", err)
	}

	if *queue != "FileQueue" {
		t.Errorf("Incorrect queue\n   expected: %v\n   got:      %v", "FileQueue", *queue)
	}

	if *timeout != 15*time.Second {
		t.Errorf("Incorrect timeout\n   expected: %v\n   got:      %v", 15*time.Second, *timeout)
	}
}

func TestCommandLineOverridesConfiguration(t *testing.T) {
	t.Setenv("OPGAVEFLYT_QUEUE", "TestQueue")

	v, err := load("")
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	flagset, queue, _, _ := flags()
	if err := flagset.Parse([]string{"--queue", "CommandLine"}); err != nil {
		t.Fatalf("%v", err)
	}

	if err := bind(v, flagset); err != nil {
		t.Fatalf("Unexpected error binding configuration (%v)", err)
	}

	if *queue != "CommandLine" {
		t.Errorf("Incorrect queue\n   expected: %v\n   got:      %v", "CommandLine", *queue)
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected error loading missing configuration file")
	}
}

func TestInvalidConfigValue(t *testing.T) {
	t.Setenv("OPGAVEFLYT_TIMEOUT", "soon")

	v, err := load("")
	if err != nil {
		t.Fatalf("Unexpected error loading configuration (%v)", err)
	}

	flagset, _, _, _ := flags()
	if err := bind(v, flagset); err == nil {
		t.Errorf("Expected error binding invalid timeout")
	}
}

func TestCommandsAdapted(t *testing.T) {
	var closer func()

	cmd := root(&closer)

	for _, name := range []string{"dispatch", "get", "put", "reset", "set-constant", "set-credential", "authorise", "version"} {
		c, _, err := cmd.Find([]string{name})
		if err != nil || c == cmd {
			t.Errorf("Missing '%v' command (%v)", name, err)
			continue
		}

		if name == "dispatch" && c.Flags().Lookup("dryrun") == nil {
			t.Errorf("Missing --dryrun flag for 'dispatch'")
		}
	}
}

func TestLogfileClosedOnCommandError(t *testing.T) {
	dir := t.TempDir()
	logfile := filepath.Join(dir, "dispatcher.log")
	config := filepath.Join(dir, "dispatcher.yaml")

	if err := os.WriteFile(config, []byte("dryrun: true\n"), 0660); err != nil {
		t.Fatalf("%v", err)
	}

	saved := commands.DispatchCmd
	flags := log.Flags()

	t.Cleanup(func() {
		commands.DispatchCmd = saved
		options = commands.Options{}
		log.SetFlags(flags)
		logging.SetOutput(os.Stderr)
	})

	log.SetFlags(0)

	err := run(context.Background(), []string{"--config", config, "--logfile", logfile, "dispatch", "--queue", ""})
	if err == nil {
		t.Fatalf("Expected error for missing --queue")
	}

	logging.Infof("after exit")

	b, err := os.ReadFile(logfile)
	if err != nil {
		t.Fatalf("Error reading log file (%v)", err)
	}

	if !strings.Contains(string(b), "ERROR --queue is a required option") {
		t.Errorf("Command error missing from log file\n   got: %q", string(b))
	}

	if strings.Contains(string(b), "after exit") {
		t.Errorf("Log file still open after command error\n   got: %q", string(b))
	}
}
