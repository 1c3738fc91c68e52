package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/workbook"
)

var ResetCmd = Reset{
	command: defaults(),

	file:   "Aktivitetsoverdragelse.xlsx",
	upload: "",
}

// Reset writes an empty hand-over template and optionally uploads it over the
// remote workbook.
type Reset struct {
	command
	file   string
	upload string
}

func (cmd *Reset) Name() string {
	return "reset"
}

func (cmd *Reset) Description() string {
	return "Writes an empty hand-over workbook and optionally uploads it to the document store"
}

func (cmd *Reset) Usage() string {
	return "[--file <file>] [--upload <folder>]"
}

func (cmd *Reset) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] reset [options] --file <file> [--upload <folder>]\n", APP)
	fmt.Println()
	fmt.Printf("  Writes an empty '%s' worksheet with the hand-over table header and a single blank row\n", workbook.Sheet)
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    opgaveflyt-dispatcher reset --file "Aktivitetsoverdragelse.xlsx"`)
	fmt.Println(`    opgaveflyt-dispatcher reset --file "Aktivitetsoverdragelse.xlsx" --upload "Delte dokumenter/Aktivitetsoverdragelse"`)
	fmt.Println()
}

func (cmd *Reset) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("reset")

	flagset.StringVar(&cmd.file, "file", cmd.file, "Local workbook file")
	flagset.StringVar(&cmd.upload, "upload", cmd.upload, "Document library folder to upload the template to")

	return flagset
}

func (cmd *Reset) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	if err := workbook.WriteEmptyTemplate(cmd.file); err != nil {
		return err
	}

	logging.Infof("wrote empty template to %v", cmd.file)

	if strings.TrimSpace(cmd.upload) == "" {
		return nil
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

	_, err = cmd.synchronizer(db).Upload(ctx, session, cmd.upload, cmd.file)

	return err
}
