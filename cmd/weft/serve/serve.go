// Package servecmder provides the serve command for running the weft server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/weft/api"
	apimcp "github.com/papercomputeco/weft/api/mcp"
	"github.com/papercomputeco/weft/pkg/config"
	"github.com/papercomputeco/weft/pkg/dotdir"
	"github.com/papercomputeco/weft/pkg/logger"
	"github.com/papercomputeco/weft/pkg/persist"
	"github.com/papercomputeco/weft/pkg/session"
)

type ServeCommander struct {
	listen     string
	storageDir string
	ttlHours   uint
	deadEndCap uint
	debug      bool
	configDir  string
	logger     *zap.Logger
	viper      *viper.Viper
}

const serveLongDesc string = `Run the weft server.

Serves the REST API and the MCP endpoint on one address. The session is
restored from the persisted snapshot if one exists and has not expired.

Examples:
  weft serve
  weft serve --listen :9000
  weft serve --storage-dir /var/lib/weft --ttl-hours 48`

const serveShortDesc string = "Run the weft server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cmder.viper, err = config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			config.BindRegisteredFlags(cmder.viper, cmd, config.ServeFlags, []string{
				config.FlagAPIListen,
				config.FlagStorageDir,
				config.FlagTTLHours,
			})

			cmder.listen = cmder.viper.GetString("api.listen")
			cmder.storageDir = cmder.viper.GetString("storage.dir")
			cmder.ttlHours = cmder.viper.GetUint("session.ttl_hours")
			cmder.deadEndCap = cmder.viper.GetUint("session.dead_end_cap")

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.ServeFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagStorageDir, &cmder.storageDir)
	config.AddUintFlag(cmd, config.ServeFlags, config.FlagTTLHours, &cmder.ttlHours)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	driver, err := c.newDriver()
	if err != nil {
		return err
	}

	engine := session.NewEngine(session.Config{
		Driver:     driver,
		Logger:     c.logger,
		DeadEndCap: c.deadEndCap,
	})
	defer engine.Close()

	engine.Load(context.Background())

	mcpServer, err := apimcp.NewServer(apimcp.Config{
		Engine: engine,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiConfig := api.Config{
		ListenAddr: c.listen,
	}
	apiServer := api.NewServer(apiConfig, engine, mcpServer.Handler(), c.logger)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}

// newDriver builds the snapshot persistence driver from resolved config.
// An empty storage dir falls back to the resolved .weft/ directory.
func (c *ServeCommander) newDriver() (persist.Driver, error) {
	dir := c.storageDir
	if dir == "" {
		target, err := dotdir.NewManager().Target(c.configDir)
		if err != nil {
			return nil, fmt.Errorf("resolving storage dir: %w", err)
		}
		dir = target
	}

	file := c.viper.GetString("storage.file")
	path := filepath.Join(dir, file)
	ttl := time.Duration(c.ttlHours) * time.Hour

	c.logger.Info("using snapshot storage",
		zap.String("path", path),
		zap.Duration("ttl", ttl),
	)

	return persist.NewFileDriver(path, ttl), nil
}
