package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/notary/src/common"
	"github.com/mosaicnetworks/notary/src/notary"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultKeysDir is the folder of the data directory holding key files.
	DefaultKeysDir = "keys"

	// DefaultKeyName is the name of the signing key, without extension.
	DefaultKeyName = "notary"

	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"
)

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultURL           = "http://127.0.0.1:8008"
	DefaultWait          = 10 * time.Second
	DefaultFamilyVersion = notary.DefaultVersion
	DefaultListenAddr    = "127.0.0.1:8008"
	DefaultProcessorAddr = "127.0.0.1:4004"
	DefaultTPAddr        = "127.0.0.1:4005"
	DefaultEventsAddr    = "127.0.0.1:8009"
	DefaultRealm         = "notary"
	DefaultTimeout       = 5 * time.Second
	DefaultQueueSize     = 100
	DefaultStore         = false
)

// Config contains the configuration of every notary command. Each command
// only reads the fields it needs.
type Config struct {
	// DataDir is the top-level directory containing configuration, keys and
	// data.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogDir, when set, receives info and debug log files.
	LogDir string `mapstructure:"log-dir"`

	// URL is the base URL of the ledger's REST API.
	URL string `mapstructure:"url"`

	// KeyName selects the key file under DataDir/keys.
	KeyName string `mapstructure:"key"`

	// KeyFile overrides the key path derived from DataDir and KeyName.
	KeyFile string `mapstructure:"keyfile"`

	// Wait is how long a client follows the status of a submitted batch. Zero
	// submits without waiting.
	Wait time.Duration `mapstructure:"wait"`

	// FamilyVersion selects the payload encoding of new transactions.
	FamilyVersion string `mapstructure:"family-version"`

	// ListenAddr is where the development ledger serves its REST API.
	ListenAddr string `mapstructure:"listen"`

	// ProcessorAddr is where the ledger accepts transaction processor
	// registrations.
	ProcessorAddr string `mapstructure:"processor-listen"`

	// TPAddr is where a transaction processor accepts the ledger's calls.
	TPAddr string `mapstructure:"tp-listen"`

	// EventsAddr is the websocket address of the event bus.
	EventsAddr string `mapstructure:"events-listen"`

	// Realm is the WAMP realm of the event bus.
	Realm string `mapstructure:"realm"`

	// Timeout bounds calls between the ledger and transaction processors.
	Timeout time.Duration `mapstructure:"timeout"`

	// QueueSize is the number of batches the ledger queues before refusing
	// submissions.
	QueueSize int `mapstructure:"queue-size"`

	// Store activates persistant storage.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// External disables the built-in notary handler, so that transactions are
	// only applied by registered transaction processors.
	External bool `mapstructure:"external"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:       DefaultDataDir(),
		LogLevel:      DefaultLogLevel,
		URL:           DefaultURL,
		KeyName:       DefaultKeyName,
		Wait:          DefaultWait,
		FamilyVersion: DefaultFamilyVersion,
		ListenAddr:    DefaultListenAddr,
		ProcessorAddr: DefaultProcessorAddr,
		TPAddr:        DefaultTPAddr,
		EventsAddr:    DefaultEventsAddr,
		Realm:         DefaultRealm,
		Timeout:       DefaultTimeout,
		QueueSize:     DefaultQueueSize,
		Store:         DefaultStore,
		DatabaseDir:   DefaultDatabaseDir(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t)
	return config
}

// SetDataDir sets the top-level directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitely set
// it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	if c.KeyFile != "" {
		return c.KeyFile
	}
	return filepath.Join(c.DataDir, DefaultKeysDir, c.KeyName+".priv")
}

// PublicKeyfile returns the path where keygen writes the public key.
func (c *Config) PublicKeyfile() string {
	priv := c.Keyfile()
	return priv[:len(priv)-len(filepath.Ext(priv))] + ".pub"
}

// SetLogger replaces the logger returned by Logger.
func (c *Config) SetLogger(logger *logrus.Logger) {
	c.logger = logger
}

// Logger returns a formatted logrus Entry, with prefix set to "notary".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "notary")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level notary
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Notary")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Notary")
		} else {
			return filepath.Join(home, ".notary")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
