// Package cli is the command-line driving adapter. Commands talk to the
// core through the driving ports; the real services are wired on first use
// and tests inject fakes into the package singletons instead.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/core/ports/driving"
	"github.com/zotcast/zotcast/internal/logx"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// Persistent flags shared by every command.
var (
	cfgPath  string
	logLevel string
	logFile  string
)

// Services the commands drive. wireServices assigns them from
// configuration; a non-nil value is left alone.
var (
	notifierService driving.Notifier
	curatorService  driving.Curator
	stateStore      driven.StateStore
	stateTransfer   driven.StateTransfer
)

// logService owns the log sinks once wired; Cleanup closes them.
var logService *logx.Service

var rootCmd = &cobra.Command{
	Use:   "zotcast",
	Short: "Change notifications for a shared Zotero library",
	Long: `zotcast watches the collections listed in the state file, detects
records and child notes added or modified since each collection's
watermark, and announces them to Slack channels and email recipients.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.zotcast/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append line-JSON logs to this file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Cleanup releases resources held by the wired services. Called by main
// after Execute returns.
func Cleanup() {
	if logService != nil {
		_ = logService.Close()
		logService = nil
	}
}
