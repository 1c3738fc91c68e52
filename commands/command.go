package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/orchestrator"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/secrets"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store/gdrive"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store/sharepoint"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/transfer"
)

const APP = "opgaveflyt-dispatcher"

const (
	STORE_SHAREPOINT = "sharepoint"
	STORE_GDRIVE     = "gdrive"

	VAULT_ORCHESTRATOR = "orchestrator"
	VAULT_AWS          = "aws"
)

// Options holds the global command line options.
type Options struct {
	Debug   bool
	Config  string
	Logfile string
}

// Command is the shape shared by all the CLI commands. main() adapts each one
// into a cobra command.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *flag.FlagSet
	Execute(ctx context.Context, options *Options) error
}

// command holds the connection options common to every command that talks to
// the document store or the orchestrator.
type command struct {
	workdir    string
	db         string
	key        string
	process    string
	vault      string
	region     string
	prefix     string
	store      string
	credential string
	constant   string
	site       string
	sitePath   string
	tenant     string
	clientID   string
	gcreds     string
	tokens     string
	timeout    time.Duration
}

func defaults() command {
	return command{
		workdir:    ".",
		db:         DEFAULT_DB,
		key:        "",
		process:    "NovaOpgaveFlytDispatcher",
		vault:      VAULT_ORCHESTRATOR,
		region:     "",
		prefix:     "opgaveflyt/",
		store:      STORE_SHAREPOINT,
		credential: "Robot365User",
		constant:   "AarhusKommuneSharePoint",
		site:       "",
		sitePath:   "/Teams/tea-teamsite10149",
		tenant:     "organizations",
		clientID:   sharepoint.DefaultClientID,
		gcreds:     DEFAULT_CREDENTIALS,
		tokens:     "",
		timeout:    sharepoint.DefaultTimeout,
	}
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ContinueOnError)

	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for transient workbook files")
	flagset.StringVar(&c.db, "db", c.db, "Orchestrator database file")
	flagset.StringVar(&c.key, "key", c.key, "32 byte orchestrator key (hex or base64) for sealed credentials")
	flagset.StringVar(&c.process, "process", c.process, "Process name recorded in the orchestrator log")
	flagset.StringVar(&c.vault, "vault", c.vault, "Credential and constant source ('orchestrator' or 'aws')")
	flagset.StringVar(&c.region, "aws-region", c.region, "AWS region for the 'aws' vault")
	flagset.StringVar(&c.prefix, "aws-prefix", c.prefix, "Secret name prefix for the 'aws' vault")
	flagset.StringVar(&c.store, "store", c.store, "Document store ('sharepoint' or 'gdrive')")
	flagset.StringVar(&c.credential, "credential", c.credential, "Name of the document store credential")
	flagset.StringVar(&c.constant, "site-constant", c.constant, "Name of the constant holding the SharePoint base URL")
	flagset.StringVar(&c.site, "site", c.site, "SharePoint site URL. Overrides --site-constant and --site-path")
	flagset.StringVar(&c.sitePath, "site-path", c.sitePath, "Site path appended to the SharePoint base URL")
	flagset.StringVar(&c.tenant, "tenant", c.tenant, "Azure AD tenant")
	flagset.StringVar(&c.clientID, "client-id", c.clientID, "Azure AD public client ID")
	flagset.StringVar(&c.gcreds, "credentials", c.gcreds, "Google Drive 'credentials.json' file")
	flagset.StringVar(&c.tokens, "tokens", c.tokens, "Google Drive user tokens file. Defaults to a service account if empty")
	flagset.DurationVar(&c.timeout, "timeout", c.timeout, "Document store request timeout")

	return flagset
}

// orchestrator opens the orchestrator database. The caller closes it.
func (c *command) orchestrator() (*orchestrator.DB, error) {
	key, err := orchestrator.ParseKey(c.key)
	if err != nil {
		return nil, fmt.Errorf("invalid --key (%w)", err)
	}

	return orchestrator.Open(c.db, key, c.process)
}

// secrets returns the vault selected by --vault, falling back to the already
// open orchestrator database.
func (c *command) secrets(ctx context.Context, db *orchestrator.DB) (secrets.Vault, error) {
	switch c.vault {
	case VAULT_ORCHESTRATOR, "":
		return db, nil

	case VAULT_AWS:
		return secrets.NewAWSVault(ctx, c.region, c.prefix)

	default:
		return nil, fmt.Errorf("invalid --vault '%v' - expected 'orchestrator' or 'aws'", c.vault)
	}
}

// connect authenticates against the document store selected by --store.
func (c *command) connect(ctx context.Context, vault secrets.Vault) (store.Session, error) {
	switch c.store {
	case STORE_SHAREPOINT, "":
		credentials, err := vault.GetCredential(ctx, c.credential)
		if err != nil {
			return nil, fmt.Errorf("credential '%v' (%w)", c.credential, err)
		}

		site, err := c.siteURL(ctx, vault)
		if err != nil {
			return nil, err
		}

		logging.Debugf("connecting to %v as %v", site, credentials)

		return sharepoint.Connect(ctx, credentials, site,
			sharepoint.WithTenant(c.tenant),
			sharepoint.WithClientID(c.clientID),
			sharepoint.WithTimeout(c.timeout))

	case STORE_GDRIVE:
		return gdrive.Connect(ctx, c.gcreds, c.tokens)

	default:
		return nil, fmt.Errorf("invalid --store '%v' - expected 'sharepoint' or 'gdrive'", c.store)
	}
}

func (c *command) siteURL(ctx context.Context, vault secrets.Vault) (string, error) {
	if site := strings.TrimSpace(c.site); site != "" {
		return site, nil
	}

	base, err := vault.GetConstant(ctx, c.constant)
	if err != nil {
		return "", fmt.Errorf("constant '%v' (%w)", c.constant, err)
	}

	return strings.TrimSuffix(base, "/") + c.sitePath, nil
}

func (c *command) synchronizer(logger transfer.Logger) *transfer.Synchronizer {
	opts := []transfer.Option{transfer.WithDir(c.workdir)}
	if logger != nil {
		opts = append(opts, transfer.WithLogger(logger))
	}

	return transfer.NewSynchronizer(opts...)
}

func (c *command) mkdirs() error {
	return os.MkdirAll(c.workdir, 0770)
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flagset.VisitAll(func(f *flag.Flag) {
		count++
	})

	if count > 0 {
		fmt.Println("  Options:")
		flagset.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-16s %s\n", f.Name, f.Usage)
		})
		fmt.Println()
	}

	fmt.Println("  Global options:")
	fmt.Printf("    --%-16s %s\n", "config", "Configuration file (YAML, TOML or JSON)")
	fmt.Printf("    --%-16s %s\n", "logfile", "Rotated log file. Logs to stderr only if empty")
	fmt.Printf("    --%-16s %s\n", "debug", "Displays internal information for diagnosing errors")
}
