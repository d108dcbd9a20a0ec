package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitfsorg/libtokensale-go/config"
	"github.com/bitfsorg/libtokensale-go/logging"
	"github.com/bitfsorg/libtokensale-go/sale"
	"github.com/bitfsorg/libtokensale-go/store"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfg   config.Config
	log   *zap.Logger
	store *store.Store
}

// run executes one command line and releases the store and logger whether
// or not the command succeeded.
func run(args []string, out, errOut io.Writer) error {
	a := &app{log: zap.NewNop()}
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tokensale",
		Short:         "Runs a token sale",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return a.setup(c)
		},
	}
	AddGlobalFlags(root.PersistentFlags())

	root.AddCommand(
		keygenCommand(a),
		signCommand(a),
		initCommand(a),
		depositCommand(a),
		distributeCommand(a),
		queryCommand(a),
	)
	return root
}

// setup loads the config file, applies flag overrides and builds the
// logger.
func (a *app) setup(c *cobra.Command) error {
	flags := c.Flags()
	dataDir, err := flags.GetString(DataDirKey)
	if err != nil {
		return err
	}
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	cfgPath, err := flags.GetString(ConfigKey)
	if err != nil {
		return err
	}
	if cfgPath == "" {
		cfgPath = config.ConfigPath(dataDir)
	}

	cfg, err := config.LoadConfig(cfgPath)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		cfg = config.DefaultConfig()
	case err != nil:
		return err
	}
	if flags.Changed(DataDirKey) || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if lvl, _ := flags.GetString(LogLevelKey); lvl != "" {
		cfg.LogLevel = lvl
	}
	if network, _ := flags.GetString(NetworkKey); network != "" {
		cfg.Network = network
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	a.log = log.With(zap.String("cmd", c.Name()))
	return nil
}

func (a *app) close() error {
	_ = a.log.Sync()
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.Open(filepath.Join(a.cfg.DataDir, store.FileName))
	if err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// loadContract opens the store and restores the sale.
func (a *app) loadContract() (*store.Store, *sale.Contract, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}
	c, err := s.LoadContract(sale.WithLogger(a.log))
	if err != nil {
		return nil, nil, fmt.Errorf("load sale from %s: %w", s.Path(), err)
	}
	return s, c, nil
}
