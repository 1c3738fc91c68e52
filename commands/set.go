package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
)

var SetConstantCmd = SetConstant{
	command: defaults(),
}

var SetCredentialCmd = SetCredential{
	command: defaults(),
	stdin:   os.Stdin,
}

// SetConstant stores a named constant in the orchestrator database.
type SetConstant struct {
	command
	name  string
	value string
}

func (cmd *SetConstant) Name() string {
	return "set-constant"
}

func (cmd *SetConstant) Description() string {
	return "Stores a named constant in the orchestrator database"
}

func (cmd *SetConstant) Usage() string {
	return "--name <name> --value <value>"
}

func (cmd *SetConstant) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s set-constant [options] --name <name> --value <value>\n", APP)
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    opgaveflyt-dispatcher set-constant --name AarhusKommuneSharePoint --value "https://aarhuskommune.sharepoint.com"`)
	fmt.Println()
}

func (cmd *SetConstant) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("set-constant")

	flagset.StringVar(&cmd.name, "name", cmd.name, "Constant name")
	flagset.StringVar(&cmd.value, "value", cmd.value, "Constant value")

	return flagset
}

func (cmd *SetConstant) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(cmd.name) == "" {
		return fmt.Errorf("--name is a required option")
	}

	db, err := cmd.orchestrator()
	if err != nil {
		return err
	}

	defer db.Close()

	if err := db.SetConstant(ctx, cmd.name, cmd.value); err != nil {
		return err
	}

	logging.Infof("set constant %v", cmd.name)

	return nil
}

// SetCredential stores a named username/password pair in the orchestrator
// database. The password is read from stdin if not given as an option.
type SetCredential struct {
	command
	name     string
	username string
	password string
	stdin    io.Reader
}

func (cmd *SetCredential) Name() string {
	return "set-credential"
}

func (cmd *SetCredential) Description() string {
	return "Stores a named credential in the orchestrator database"
}

func (cmd *SetCredential) Usage() string {
	return "--name <name> --username <user> [--password <password>]"
}

func (cmd *SetCredential) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s set-credential [options] --name <name> --username <user> [--password <password>]\n", APP)
	fmt.Println()
	fmt.Println("  The password is sealed with --key and is read from stdin if --password is not given")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    echo "$PASSWORD" | opgaveflyt-dispatcher set-credential --key "$OPGAVEFLYT_KEY" --name Robot365User --username robot@aarhus.dk`)
	fmt.Println()
}

func (cmd *SetCredential) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("set-credential")

	flagset.StringVar(&cmd.name, "name", cmd.name, "Credential name")
	flagset.StringVar(&cmd.username, "username", cmd.username, "User name")
	flagset.StringVar(&cmd.password, "password", cmd.password, "Password. Read from stdin if empty")

	return flagset
}

func (cmd *SetCredential) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(cmd.name) == "" {
		return fmt.Errorf("--name is a required option")
	}

	if strings.TrimSpace(cmd.username) == "" {
		return fmt.Errorf("--username is a required option")
	}

	if strings.TrimSpace(cmd.key) == "" {
		return fmt.Errorf("--key is a required option")
	}

	password := cmd.password
	if password == "" && cmd.stdin != nil {
		line, err := bufio.NewReader(cmd.stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}

		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return fmt.Errorf("missing password")
	}

	db, err := cmd.orchestrator()
	if err != nil {
		return err
	}

	defer db.Close()

	credentials := store.Credentials{
		Username: cmd.username,
		Password: password,
	}

	if err := db.SetCredential(ctx, cmd.name, credentials); err != nil {
		return err
	}

	logging.Infof("set credential %v (%v)", cmd.name, cmd.username)

	return nil
}
