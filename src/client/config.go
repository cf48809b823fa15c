package client

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/hiero-ledger/hiero-go-client/src/common"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the
	// Badger database used to cache fetched address books.
	DefaultBadgerFile = "badger_db"

	// DefaultAddressBookFile is the default name of the JSON file holding
	// the last known address book.
	DefaultAddressBookFile = "address_book.json"
)

// Default configuration values.
const (
	DefaultLogLevel              = "info"
	DefaultNetworkName           = "mainnet"
	DefaultRequestTimeout        = 2 * time.Minute
	DefaultPingTimeout           = 5 * time.Second
	DefaultAutoValidateChecksums = false
	DefaultTransportSecurity     = false
	DefaultStore                 = false
)

// Config contains all the configuration properties of a client.
type Config struct {
	// DataDir is the top-level directory containing client configuration
	// and cached data.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// NetworkName selects one of the public networks: mainnet, testnet or
	// previewnet. It also determines the ledger id used for checksum
	// validation.
	NetworkName string `mapstructure:"network"`

	// Operator is the account that pays for generated transactions, in
	// shard.realm.num form. Leave empty for query-only clients.
	Operator string `mapstructure:"operator"`

	// RequestTimeout is the default overall deadline for a request whose
	// caller did not set one.
	RequestTimeout time.Duration `mapstructure:"request-timeout"`

	// PingTimeout bounds the liveness probe sent to a node that has not
	// been heard from recently.
	PingTimeout time.Duration `mapstructure:"ping-timeout"`

	// AutoValidateChecksums enables verification of entity id checksums
	// against the network's ledger id before requests are sent.
	AutoValidateChecksums bool `mapstructure:"checksums"`

	// TransportSecurity makes all node connections use TLS.
	TransportSecurity bool `mapstructure:"tls"`

	// Store activates persistent caching of fetched address books.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:               DefaultDataDir(),
		LogLevel:              DefaultLogLevel,
		NetworkName:           DefaultNetworkName,
		RequestTimeout:        DefaultRequestTimeout,
		PingTimeout:           DefaultPingTimeout,
		AutoValidateChecksums: DefaultAutoValidateChecksums,
		TransportSecurity:     DefaultTransportSecurity,
		Store:                 DefaultStore,
		DatabaseDir:           DefaultDatabaseDir(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level client directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, the user has explicitly set it to
// something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// AddressBookFile returns the full path of the cached address book JSON
// file.
func (c *Config) AddressBookFile() string {
	return filepath.Join(c.DataDir, DefaultAddressBookFile)
}

// SetLogger injects an externally configured logger, replacing the one
// Logger would otherwise build.
func (c *Config) SetLogger(logger *logrus.Logger) {
	c.logger = logger
}

// Logger returns a formatted logrus Entry, with prefix set to "client".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "client")
}

// DefaultDatabaseDir returns the default path for the badger database
// files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir returns the default directory name for top-level client
// data based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Hiero")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Hiero")
		} else {
			return filepath.Join(home, ".hiero")
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
