package commands

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store/gdrive"
)

var AuthoriseCmd = Authorise{
	command: defaults(),
	listen:  "127.0.0.1:0",
}

// Authorise obtains a Google Drive user token for the 'gdrive' store and saves
// it to the --tokens file.
type Authorise struct {
	command
	listen string
	open   func(url string) error
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises access to Google Drive and saves the user token"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file> [--tokens <file>]"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --credentials <file>\n", APP)
	fmt.Println()
	fmt.Println("  Authorises access to Google Drive for the 'gdrive' document store")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    opgaveflyt-dispatcher authorise --credentials "credentials.json" --tokens ".google/credentials.drive"`)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("authorise")

	flagset.StringVar(&cmd.listen, "listen", cmd.listen, "Local address for the OAuth2 redirect")

	return flagset
}

func (cmd *Authorise) Execute(ctx context.Context, options *Options) error {
	if strings.TrimSpace(cmd.gcreds) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	tokens := cmd.tokens
	if tokens == "" {
		_, file := filepath.Split(cmd.gcreds)
		name := strings.TrimSuffix(file, filepath.Ext(file))
		tokens = filepath.Join(DEFAULT_WORKDIR, ".google", fmt.Sprintf("%s.drive", name))
	}

	config, err := gdrive.Config(cmd.gcreds)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	}

	token, err := cmd.authorise(ctx, config)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	} else if token == nil {
		return nil
	}

	if err := gdrive.SaveToken(tokens, token); err != nil {
		return err
	}

	logging.Infof("saved Google Drive token to %v", tokens)

	return nil
}

// authorise runs the OAuth2 loopback flow: the authorisation URL redirects to
// a local HTTP server which hands the code back for exchange. Returns a nil
// token if interrupted.
func (cmd *Authorise) authorise(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", cmd.listen)
	if err != nil {
		return nil, err
	}

	config.RedirectURL = fmt.Sprintf("http://%v/", listener.Addr())

	state := fmt.Sprintf("%s-state", APP)
	authorised := make(chan string, 1)
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, rq *http.Request) {
		code := rq.FormValue("code")
		if rq.FormValue("state") != state || code == "" {
			http.Error(w, "invalid authorisation response", http.StatusBadRequest)
			return
		}

		fmt.Fprintln(w, "Authorised - you can close this page")

		select {
		case authorised <- code:
		default:
		}
	})

	srv := &http.Server{
		Handler: mux,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Errorf("%v", err)
		}
	}()

	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			logging.Warnf("%v", err)
		}
	}()

	url := config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	if cmd.open == nil || cmd.open(url) != nil {
		fmt.Printf("\n  Open the following URL in your browser to authorise access:\n\n    %v\n\n", url)
	}

	interrupt := make(chan os.Signal, 1)

	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	select {
	case <-interrupt:
		fmt.Printf("\n.. cancelled\n\n")
		return nil, nil

	case <-ctx.Done():
		return nil, ctx.Err()

	case code := <-authorised:
		return config.Exchange(ctx, code)
	}
}
