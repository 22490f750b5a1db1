// Command gossip-client dials a gossip entrypoint, completes the liveness
// handshake, and either reports the result once or keeps a discovery
// pipeline running with an optional HTTP status surface.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ceppelli/solana-gossip-tui/internal/gossipnet"
	"github.com/ceppelli/solana-gossip-tui/internal/wire"
	pkgconfig "github.com/ceppelli/solana-gossip-tui/pkg/config"
)

const defaultEntrypoint = "141.98.219.218:8000"

func main() {
	rootCmd := &cobra.Command{Use: "gossip-client"}
	rootCmd.PersistentFlags().String("entrypoint", defaultEntrypoint, "gossip entrypoint address (host:port)")
	rootCmd.PersistentFlags().String("bind", "0.0.0.0:0", "local UDP bind address")
	rootCmd.PersistentFlags().String("env", "", "config environment name (e.g. bootstrap)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit JSON-formatted logs")

	rootCmd.AddCommand(handshakeCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(jsonOutput bool) *logrus.Logger {
	log := logrus.New()
	if jsonOutput {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func loadConfig(cmd *cobra.Command) (*pkgconfig.Config, error) {
	env, _ := cmd.Flags().GetString("env")
	return pkgconfig.Load(env)
}

func dial(cmd *cobra.Command, cfg *pkgconfig.Config) (*gossipnet.Conn, *gossipnet.Identity, error) {
	entrypointFlag, _ := cmd.Flags().GetString("entrypoint")
	if entrypointFlag == "" || entrypointFlag == defaultEntrypoint {
		if cfg.Gossip.Entrypoint != "" {
			entrypointFlag = cfg.Gossip.Entrypoint
		}
	}
	entrypoint, err := gossipnet.ParseAddr(entrypointFlag)
	if err != nil {
		return nil, nil, err
	}

	bindFlag, _ := cmd.Flags().GetString("bind")
	bind, err := gossipnet.ParseAddr(bindFlag)
	if err != nil {
		return nil, nil, err
	}

	conn, err := gossipnet.Connect(entrypoint, bind)
	if err != nil {
		return nil, nil, err
	}

	identity, err := gossipnet.NewIdentity(conn.LocalAddr(), cfg.Gossip.ShredVersion)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, identity, nil
}

func handshakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handshake",
		Short: "dial the entrypoint and complete one ping/pong/pull round",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("log-json")
			log := newLogger(jsonOut)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			conn, identity, err := dial(cmd, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := gossipnet.Handshake(conn, identity, log)
			if err != nil {
				return err
			}
			fmt.Printf("handshake ok: %d value(s) in pull response\n", len(result.Response.Values))
			for _, v := range result.Response.Values {
				ci, ok := v.Data.(*wire.ContactInfo)
				if !ok {
					continue
				}
				fmt.Printf("  node %s gossip=%s\n", hex.EncodeToString(ci.ID[:8]), ci.Gossip)
			}
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "complete the handshake and keep a discovery pipeline running",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("log-json")
			log := newLogger(jsonOut)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			conn, identity, err := dial(cmd, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := gossipnet.Handshake(conn, identity, log); err != nil {
				return err
			}
			log.Info("handshake complete, starting pipeline")

			var metrics *gossipnet.Metrics
			if cfg.Metrics.Enabled {
				metrics = gossipnet.NewMetrics()
			}

			pipeline := gossipnet.InitPipeline(conn, identity, metrics, log)
			pipeline.Start()

			view := newPeerView()
			go view.drain(pipeline.Data())
			if metrics != nil {
				go func() {
					for s := range pipeline.StatsChan() {
						metrics.Observe(s)
					}
				}()
			}

			var httpSrv *statusServer
			if cfg.Metrics.Enabled {
				httpSrv = startStatusServer(cfg.Metrics.ListenAddr, view, metrics, log)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh

			log.Info("shutting down")
			pipeline.Stop()
			if httpSrv != nil {
				httpSrv.Shutdown()
			}
			return nil
		},
	}
	return cmd
}
