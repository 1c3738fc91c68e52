package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/commands"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
)

var cli = []commands.Command{
	&commands.DispatchCmd,
	&commands.GetCmd,
	&commands.PutCmd,
	&commands.ResetCmd,
	&commands.SetConstantCmd,
	&commands.SetCredentialCmd,
	&commands.AuthoriseCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Debug:   false,
	Config:  "",
	Logfile: "",
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:])

	cancel()

	if err != nil {
		os.Exit(1)
	}
}

// run executes the command line and closes the log file on the way out,
// including when the command fails.
func run(ctx context.Context, args []string) error {
	var closer func()

	defer func() {
		if closer != nil {
			closer()
		}
	}()

	cmd := root(&closer)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		logging.Errorf("%v", err)
		return err
	}

	return nil
}

func root(closer *func()) *cobra.Command {
	root := &cobra.Command{
		Use:           commands.APP,
		Short:         "Queues activity hand-overs from a SharePoint workbook to the orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, &options)
			*closer = c
			return err
		},
	}

	root.PersistentFlags().BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	root.PersistentFlags().StringVar(&options.Config, "config", options.Config, "Configuration file. Defaults to "+commands.DEFAULT_CONFIG)
	root.PersistentFlags().StringVar(&options.Logfile, "logfile", options.Logfile, "Rotated log file")

	for _, c := range cli {
		root.AddCommand(adapt(c))
	}

	return root
}

// adapt wraps a command in a cobra command, reusing its flag set and help.
func adapt(c commands.Command) *cobra.Command {
	flagset := c.FlagSet()

	cmd := &cobra.Command{
		Use:   c.Name() + " " + c.Usage(),
		Short: c.Description(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Execute(cmd.Context(), &options)
		},
	}

	cmd.Flags().AddGoFlagSet(flagset)
	cmd.SetHelpFunc(func(*cobra.Command, []string) {
		c.Help()
	})

	return cmd
}
