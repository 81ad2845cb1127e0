package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"gloss/internal/api"
	"gloss/internal/config"
	"gloss/internal/ipc"
	"gloss/internal/library"
	"gloss/internal/logging"
)

type commandContext struct {
	socketFlag *string
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = c.loadConfig()
	})
	return c.config, c.configErr
}

func (c *commandContext) loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(c.requestedConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *commandContext) requestedConfigPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// socketPath resolves the daemon socket, writing a derived default back
// through the flag so later reads agree with what was dialed.
func (c *commandContext) socketPath() string {
	if c.socketFlag == nil {
		return defaultSocketPath()
	}
	socket := strings.TrimSpace(*c.socketFlag)
	if socket == "" {
		socket = defaultSocketPath()
		*c.socketFlag = socket
	}
	return socket
}

// withAPI runs fn against the daemon when one is listening on the socket,
// and falls back to direct library access when the daemon is down. Dial
// failures other than a missing or refusing socket are surfaced as-is.
func (c *commandContext) withAPI(fn func(glossAPI) error) error {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err == nil {
		defer client.Close()
		return fn(&ipcFacade{client: client})
	}
	if !daemonUnavailable(err) {
		return wrapDialError(err, socket)
	}

	cfg, cfgErr := c.ensureConfig()
	if cfgErr != nil {
		return cfgErr
	}
	store, openErr := library.Open(cfg)
	if openErr != nil {
		return fmt.Errorf("open library: %w", openErr)
	}
	defer store.Close()

	logger, logErr := logging.NewFromConfig(cfg)
	if logErr != nil {
		return fmt.Errorf("initialize logging: %w", logErr)
	}
	return fn(&localFacade{service: api.NewService(cfg, store, logger)})
}

func daemonUnavailable(err error) bool {
	return errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) || os.IsNotExist(err)
}

func wrapDialError(err error, socket string) error {
	if errors.Is(err, syscall.ENOENT) || os.IsNotExist(err) {
		return fmt.Errorf("connect to daemon: socket %s not found; start the daemon with `gloss start`", socket)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon: socket %s refused the connection; verify the daemon is running", socket)
	}
	return fmt.Errorf("connect to daemon: %w", err)
}

// defaultSocketPath mirrors the daemon's own socket placement so both ends
// agree without flags. When no config loads it falls back to the standard
// log directory, then the system temp directory.
func defaultSocketPath() string {
	if cfg, _, _, err := config.Load(""); err == nil {
		return cfg.SocketPath()
	}
	logDir, err := config.ExpandPath("~/.local/share/gloss/logs")
	if err != nil {
		logDir = os.TempDir()
	}
	return filepath.Join(logDir, "gloss.sock")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
