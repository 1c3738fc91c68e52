package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

var PutCmd = Put{
	command: defaults(),

	folder: "",
	file:   "",
}

// Put uploads a single local file to a document store folder.
type Put struct {
	command
	folder string
	file   string
}

func (c *Put) FlagSet() *flag.FlagSet {
	flagset := c.flagset("put")

	flagset.StringVar(&c.folder, "folder", c.folder, "Document library folder e.g. 'Delte dokumenter/Aktivitetsoverdragelse'")
	flagset.StringVar(&c.file, "file", c.file, "Local file")

	return flagset
}

func (c *Put) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(c.folder) == "" {
		return fmt.Errorf("--folder is a required option")
	}

	if strings.TrimSpace(c.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	db, err := c.orchestrator()
	if err != nil {
		return err
	}

	defer db.Close()

	vault, err := c.secrets(ctx, db)
	if err != nil {
		return err
	}

	session, err := c.connect(ctx, vault)
	if err != nil {
		return err
	}

	if _, err := c.synchronizer(db).Upload(ctx, session, c.folder, c.file); err != nil {
		return err
	}

	return nil
}

func (c *Put) Name() string {
	return "put"
}

func (c *Put) Description() string {
	return "Uploads a local file to a document store folder"
}

func (c *Put) Usage() string {
	return "--folder <folder> --file <file>"
}

func (c *Put) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [options] put --folder <folder> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Uploads a local file to a document library folder, replacing any file with the same name")
	fmt.Println()

	helpOptions(c.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println()
	fmt.Println(`    opgaveflyt-dispatcher --debug put --folder "Delte dokumenter/Aktivitetsoverdragelse" \`)
	fmt.Println(`                                      --file "Aktivitetsoverdragelse.xlsx"`)
	fmt.Println()
}
