package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/transfer"
)

var GetCmd = Get{
	command: defaults(),

	remote: "",
	file:   "",
}

// Get downloads a single file from the document store.
type Get struct {
	command
	remote string
	file   string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Downloads a file from the document store to a local file"
}

func (cmd *Get) Usage() string {
	return "--remote <path> [--file <file>]"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --remote <path> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads a document library file to a local file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    opgaveflyt-dispatcher --debug get --remote "Delte dokumenter/Aktivitetsoverdragelse/Aktivitetsoverdragelse.xlsx" \`)
	fmt.Println(`                                      --file "overdragelser.xlsx"`)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.remote, "remote", cmd.remote, "Document library path of the file e.g. 'Delte dokumenter/folder/file.xlsx'")
	flagset.StringVar(&cmd.file, "file", cmd.file, "Local file. Defaults to the remote file name in the working directory")

	return flagset
}

func (cmd *Get) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(cmd.remote) == "" {
		return fmt.Errorf("--remote is a required option")
	}

	if err := cmd.mkdirs(); err != nil {
		return err
	}

	db, err := cmd.orchestrator()
	if err != nil {
		return err
	}

	defer db.Close()

	vault, err := cmd.secrets(ctx, db)
	if err != nil {
		return err
	}

	session, err := cmd.connect(ctx, vault)
	if err != nil {
		return err
	}

	local, err := cmd.synchronizer(nil).Download(ctx, session, cmd.remote)
	if err != nil {
		return err
	}

	if cmd.file == "" || cmd.file == local {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cmd.file), 0770); err != nil {
		transfer.Remove(local)
		return err
	}

	if err := os.Rename(local, cmd.file); err != nil {
		transfer.Remove(local)
		return err
	}

	logging.Infof("Retrieved %v to file %v", cmd.remote, cmd.file)

	return nil
}
