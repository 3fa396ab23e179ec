package commands

import (
	"os"
	"path/filepath"

	"github.com/mosaicnetworks/notary/src/address"
	"github.com/mosaicnetworks/notary/src/config"
	"github.com/mosaicnetworks/notary/src/notary"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

//CLIConfig contains the configuration of every notary command
type CLIConfig struct {
	Notary config.Config `mapstructure:",squash"`

	// sale
	Buyer   string `mapstructure:"buyer"`
	Seller  string `mapstructure:"seller"`
	HouseID string `mapstructure:"house"`

	// keygen
	Force bool `mapstructure:"force"`

	// listen
	EventTypes    []string `mapstructure:"event-types"`
	AddressFilter string   `mapstructure:"address-filter"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Notary: *config.NewDefaultConfig(),
		EventTypes: []string{
			"ledger/batch-commit",
			"ledger/state-delta",
			notary.EventSaleAdded,
		},
		AddressFilter: "^" + address.Namespace(notary.FamilyName),
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("datadir", "d", _config.Notary.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Notary.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-dir", _config.Notary.LogDir, "Directory for info and debug log files")
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("key", "k", _config.Notary.KeyName, "Name of the key under [datadir]/keys")
	cmd.Flags().String("keyfile", _config.Notary.KeyFile, "Path of the private key file, overrides --key")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.Notary.SetDataDir(_config.Notary.DataDir)

	_config.Notary.SetLogger(newLogger())

	_config.Notary.Logger().WithFields(logrus.Fields{
		"DataDir":       _config.Notary.DataDir,
		"LogLevel":      _config.Notary.LogLevel,
		"URL":           _config.Notary.URL,
		"Keyfile":       _config.Notary.Keyfile(),
		"Wait":          _config.Notary.Wait,
		"FamilyVersion": _config.Notary.FamilyVersion,
	}).Debug(cmd.Name())

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/notary.toml (.json, .yaml also work)
	viper.SetConfigName("notary")               // name of config file (without extension)
	viper.AddConfigPath(_config.Notary.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Notary.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Notary.Logger().Debugf("No config file found in: %s", _config.Notary.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}

// newLogger writes to stderr with the prefixed formatter and, when --log-dir
// is set, also to notary_info.log and notary_debug.log in that directory.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Level = config.LogLevel(_config.Notary.LogLevel)
	logger.Formatter = new(prefixed.TextFormatter)

	if _config.Notary.LogDir == "" {
		return logger
	}

	if err := os.MkdirAll(_config.Notary.LogDir, 0700); err != nil {
		logger.WithError(err).Info("Failed to create log directory, using default stderr")
		return logger
	}

	pathMap := lfshook.PathMap{}

	for level, name := range map[logrus.Level]string{
		logrus.InfoLevel:  "notary_info.log",
		logrus.DebugLevel: "notary_debug.log",
	} {
		path := filepath.Join(_config.Notary.LogDir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			logger.Infof("Failed to open %s file, using default stderr", name)
			continue
		}
		f.Close()

		pathMap[level] = path
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))

	return logger
}
