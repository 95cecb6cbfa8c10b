package cli

import (
	"context"
	"fmt"

	"github.com/zotcast/zotcast/internal/adapters/driven/directory"
	"github.com/zotcast/zotcast/internal/adapters/driven/mail"
	"github.com/zotcast/zotcast/internal/adapters/driven/state"
	"github.com/zotcast/zotcast/internal/config"
	"github.com/zotcast/zotcast/internal/connectors/google"
	"github.com/zotcast/zotcast/internal/connectors/slack"
	"github.com/zotcast/zotcast/internal/connectors/zotero"
	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/core/services"
	"github.com/zotcast/zotcast/internal/logx"
	"github.com/zotcast/zotcast/internal/resolve"
)

// appConfig is the loaded configuration, kept for command-level checks
// after wiring.
var appConfig config.Config

// wireServices loads configuration, builds the adapters and services, and
// assigns the package singletons. Commands call it when their service is
// still nil; tests never reach it.
func wireServices() error {
	path := cfgPath
	explicit := path != ""
	if !explicit {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logxConfig(cfg)
	svc, log, err := logx.New(logCfg)
	if err != nil {
		return err
	}
	logService = svc

	library := zotero.NewClient(zotero.Config{
		LibraryID:    cfg.Zotero.LibraryID,
		LibraryType:  cfg.Zotero.LibraryType,
		APIKey:       cfg.Zotero.APIKey,
		PageSize:     cfg.Zotero.PageSize,
		RequestDelay: cfg.Zotero.RequestDelay.Std(),
	}, log)

	chat := slack.NewClient(cfg.Slack.Token, log)

	var resolver driven.MentionResolver
	switch {
	case cfg.Mentions.Mode == "fuzzy":
		resolver = resolve.NewFuzzy(chat, log)
	case cfg.Mentions.TableURL != "":
		resolver = resolve.NewTable(directory.NewProvider(cfg.Mentions.TableURL, log), log)
	}

	var mailer driven.MailSender
	if cfg.Email.Enabled {
		m, err := mail.NewSender(mail.Config{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		}, log)
		if err != nil {
			return fmt.Errorf("configure mail sender: %w", err)
		}
		mailer = m
	}

	store := state.NewStore(cfg.State.Path, log)

	dispatcher := services.NewDispatcher(chat, mailer, services.DispatchConfig{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialDelay:   cfg.Retry.InitialDelay.Std(),
		MessageDelay:   cfg.Slack.MessageDelay.Std(),
		Recipients:     cfg.Email.Recipients,
		AbortOnFailure: cfg.Email.AbortOnFailure,
	}, log)
	detector := services.NewDetector(library, log)
	formatter := services.NewFormatter(library, resolver, cfg.Mentions.LowercaseUnmatched, log)

	notifierService = services.NewNotifier(detector, formatter, dispatcher, store, resolver, log)
	curatorService = services.NewCurator(library, library, log)
	stateStore = store

	if cfg.State.DriveFileID != "" {
		t, err := google.NewTransfer(context.Background(), cfg.State.ServiceAccountFile, cfg.State.DriveFileID, log)
		if err != nil {
			return fmt.Errorf("configure state transfer: %w", err)
		}
		stateTransfer = t
	}

	appConfig = cfg
	return nil
}

// logxConfig merges the configured sinks with the persistent flag
// overrides.
func logxConfig(cfg config.Config) logx.Config {
	out := logx.Config{
		Level:    cfg.Logging.Level,
		Console:  cfg.Logging.Console,
		FilePath: cfg.Logging.File,
	}
	if logLevel != "" {
		out.Level = logLevel
	}
	if logFile != "" {
		out.FilePath = logFile
	}
	return out
}
