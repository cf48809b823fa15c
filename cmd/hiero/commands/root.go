package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hiero-ledger/hiero-go-client/src/client"
)

var (
	config  = client.NewDefaultConfig()
	logger  *logrus.Logger
	discard bool
)

func init() {
	RootCmd.PersistentFlags().StringP("datadir", "d", config.DataDir, "Base configuration directory")
	RootCmd.PersistentFlags().StringP("network", "n", config.NetworkName, "Network to connect to (mainnet, testnet, previewnet)")
	RootCmd.PersistentFlags().String("operator", config.Operator, "Operator account in shard.realm.num form")
	RootCmd.PersistentFlags().String("log", config.LogLevel, "Log level (debug, info, warn, error, fatal, panic)")
	RootCmd.PersistentFlags().Bool("tls", config.TransportSecurity, "Use TLS for node connections")
	RootCmd.PersistentFlags().Bool("checksums", config.AutoValidateChecksums, "Validate entity id checksums before sending")
	RootCmd.PersistentFlags().Bool("store", config.Store, "Cache fetched address books in badgerDB")
	RootCmd.PersistentFlags().String("db", config.DatabaseDir, "Directory containing database files")
	RootCmd.PersistentFlags().Duration("request-timeout", config.RequestTimeout, "Default overall deadline for a request")
	RootCmd.PersistentFlags().Duration("ping-timeout", config.PingTimeout, "Timeout of a node liveness probe")
	RootCmd.PersistentFlags().BoolVar(&discard, "discard", false, "Discard output to stderr and stdout")
}

// RootCmd is the root command for the hiero CLI
var RootCmd = &cobra.Command{
	Use:               "hiero",
	Short:             "Hiero network client",
	PersistentPreRunE: loadConfig,
}

func loadConfig(cmd *cobra.Command, args []string) error {
	err := viper.BindPFlags(cmd.Flags())
	if err != nil {
		return err
	}

	viper.AddConfigPath(viper.GetString("datadir"))
	viper.SetConfigName("hiero")

	// A missing config file is fine, flags and defaults still apply.
	_ = viper.ReadInConfig()

	config, err = parseConfig()
	if err != nil {
		return err
	}

	logger = newLogger()
	logger.Level = client.LogLevel(config.LogLevel)

	logger.WithFields(logrus.Fields{
		"datadir":   config.DataDir,
		"network":   config.NetworkName,
		"operator":  config.Operator,
		"tls":       config.TransportSecurity,
		"checksums": config.AutoValidateChecksums,
		"store":     config.Store,
		"log":       config.LogLevel,
	}).Debug("RUN")

	return nil
}

// Retrieve the environment configuration merged over the defaults.
func parseConfig() (*client.Config, error) {
	conf := client.NewDefaultConfig()
	err := viper.Unmarshal(conf)
	if err != nil {
		return nil, err
	}
	return conf, err
}

func newLogger() *logrus.Logger {
	logger := logrus.New()

	pathMap := lfshook.PathMap{}

	_, err := os.OpenFile("hiero_info.log", os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Info("Failed to open hiero_info.log file, using default stderr")
	} else {
		pathMap[logrus.InfoLevel] = "hiero_info.log"
	}

	_, err = os.OpenFile("hiero_debug.log", os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Info("Failed to open hiero_debug.log file, using default stderr")
	} else {
		pathMap[logrus.DebugLevel] = "hiero_debug.log"
	}

	if err == nil && discard {
		logger.Out = io.Discard
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))

	return logger
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)

		os.Exit(1)
	}
}
