package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iv-menshenin/uniqid/fleetctrl"
	"github.com/iv-menshenin/uniqid/internal/config"
	"github.com/iv-menshenin/uniqid/transport"
)

const claimTimeout = 10 * time.Second

func newNodeCmd() *cobra.Command {
	var (
		configPath string
		port       uint16
		keys       []string
	)
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Join the UDP fleet and claim keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			cfg.Keys = append(cfg.Keys, keys...)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runNode(ctx, cmd, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the yaml config")
	cmd.Flags().Uint16VarP(&port, "port", "p", transport.DefaultPort, "udp port shared by the fleet")
	cmd.Flags().StringSliceVarP(&keys, "key", "k", nil, "keys to claim once the fleet is armed")
	return cmd
}

func runNode(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	listener, err := transport.NewUDP(cfg.Port)
	if err != nil {
		return err
	}
	defer listener.Close()

	m := fleetctrl.New(listener, cfg.Options())
	m.SetLogLevel(level)
	fmt.Fprintln(cmd.OutOrStdout(), "node", m.Key(), "port", listener.Port())

	var managed = make(chan error, 1)
	go func() {
		managed <- m.Manage()
	}()

	select {
	case <-m.NotifyArmed():
		log.Infof("ARMED %s with %d peers", m.Key(), len(m.Fleet()))
	case err = <-managed:
		return fmt.Errorf("manager stopped before arming: %w", err)
	case <-ctx.Done():
		m.Stop()
		return <-managed
	}

	for _, key := range cfg.Keys {
		claimCtx, cancel := context.WithTimeout(ctx, claimTimeout)
		shard, err := m.CheckKey(claimCtx, key)
		cancel()
		if err != nil {
			log.Errorf("can't check key %q: %+v", key, err)
			continue
		}
		owner := "self"
		if !shard.Me() {
			owner = shard.NetAddr().String()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "key %q owner %s (%s)\n", key, shard.ShardID(), owner)
	}

	select {
	case err = <-managed:
		return err
	case <-ctx.Done():
		m.Stop()
		return <-managed
	}
}
