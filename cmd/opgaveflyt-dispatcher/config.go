package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/commands"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
)

const (
	ENV_PREFIX = "OPGAVEFLYT"

	LOGFILE_MAX_SIZE    = 10 // MB
	LOGFILE_MAX_BACKUPS = 5
)

// setup loads the configuration file and environment into any flags not set
// on the command line and then configures logging. The returned func closes
// the log file, if any.
func setup(cmd *cobra.Command, options *commands.Options) (func(), error) {
	v, err := load(options.Config)
	if err != nil {
		return nil, err
	}

	if err := bind(v, cmd.Flags()); err != nil {
		return nil, err
	}

	if err := bind(v, cmd.InheritedFlags()); err != nil {
		return nil, err
	}

	logging.SetDebug(options.Debug)

	if options.Logfile != "" {
		closer := logging.Rotate(options.Logfile, LOGFILE_MAX_SIZE, LOGFILE_MAX_BACKUPS)

		return func() {
			logging.SetOutput(os.Stderr)
			closer.Close()
		}, nil
	}

	return nil, nil
}

// load reads the configuration file and the OPGAVEFLYT_* environment. The
// default configuration file is optional, an explicit --config file is not.
func load(file string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	switch {
	case file != "":
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading configuration file %v (%w)", file, err)
		}

	default:
		if _, err := os.Stat(commands.DEFAULT_CONFIG); err == nil {
			v.SetConfigFile(commands.DEFAULT_CONFIG)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading configuration file %v (%w)", commands.DEFAULT_CONFIG, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return v, nil
}

// bind sets every flag that was not given on the command line from the
// configuration, keyed by the flag name.
func bind(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || f.Name == "help" || !v.IsSet(f.Name) {
			return
		}

		if err := flags.Set(f.Name, v.GetString(f.Name)); err != nil {
			errs = append(errs, fmt.Errorf("invalid configuration value for '%v' (%w)", f.Name, err))
		}
	})

	return errors.Join(errs...)
}
