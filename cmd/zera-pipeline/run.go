package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.opencensus.io/stats/view"
	"golang.org/x/xerrors"

	"github.com/zera-audit/zera-pipeline/api/client"
	"github.com/zera-audit/zera-pipeline/attest"
	"github.com/zera-audit/zera-pipeline/chain/netctx"
	"github.com/zera-audit/zera-pipeline/metrics"
	"github.com/zera-audit/zera-pipeline/node"
	"github.com/zera-audit/zera-pipeline/node/config"
	"github.com/zera-audit/zera-pipeline/storage/pipeline"
)

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Start the pipeline daemon",
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		cfg, err := config.FromFile(cctx.String("config"))
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return xerrors.Errorf("invalid config: %w", err)
		}

		wallet, err := cfg.WalletAddress()
		if err != nil {
			return err
		}
		registries, err := cfg.RegistryTable()
		if err != nil {
			return err
		}

		if err := view.Register(metrics.DefaultViews...); err != nil {
			return xerrors.Errorf("registering metric views: %w", err)
		}

		payments, pcloser, err := client.NewPaymentsRPC(ctx, cfg.Services.Payments, nil)
		if err != nil {
			return xerrors.Errorf("connecting payments service: %w", err)
		}
		defer pcloser()

		registry, rcloser, err := client.NewRegistryRPC(ctx, cfg.Services.Registry, nil)
		if err != nil {
			return xerrors.Errorf("connecting registry service: %w", err)
		}
		defer rcloser()

		transfer, tcloser, err := client.NewTransferRPC(ctx, cfg.Services.Transfer, nil)
		if err != nil {
			return xerrors.Errorf("connecting transfer service: %w", err)
		}
		defer tcloser()

		chain, ccloser, err := client.NewChainRPC(ctx, cfg.Services.Chain, nil)
		if err != nil {
			return xerrors.Errorf("connecting chain service: %w", err)
		}
		defer ccloser()

		net, err := netctx.New(ctx, chain)
		if err != nil {
			return xerrors.Errorf("probing network context: %w", err)
		}

		// Uploads commit against the storage chain; make sure the signer
		// starts there.
		if !net.OnChain(cfg.Chains.StorageChainID) {
			if err := net.SwitchTo(ctx, cfg.Chains.StorageChainID); err != nil {
				return xerrors.Errorf("switching to storage chain %d: %w", cfg.Chains.StorageChainID, err)
			}
		}

		pipe, err := pipeline.New(wallet, payments, registry, transfer, chain, pipeline.Config{
			RetentionDays: cfg.Storage.RetentionDays,
			WithCDN:       cfg.Storage.WithCDN,

			RootConfirmAttempts: cfg.Chains.RootConfirmAttempts,
			RootConfirmInterval: time.Duration(cfg.Chains.RootConfirmInterval),
		})
		if err != nil {
			return xerrors.Errorf("constructing upload pipeline: %w", err)
		}

		coordinator := attest.NewCoordinator(ctx, chain, net, attest.Config{
			AttestationChainID: cfg.Chains.AttestationChainID,
			Registries:         registries,
			ConfirmAttempts:    cfg.Chains.MappingConfirmAttempts,
			ConfirmInterval:    time.Duration(cfg.Chains.MappingConfirmInterval),
		})

		pn := node.New(pipe, coordinator, net)

		srv, err := node.ServeRPC(pn, cfg.API.ListenAddress)
		if err != nil {
			return xerrors.Errorf("serving rpc: %w", err)
		}

		log.Infow("pipeline daemon started", "wallet", wallet, "listen", cfg.API.ListenAddress)

		sigCh := make(chan os.Signal, 2)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sigCh:
			log.Infow("shutting down", "signal", sig)
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.API.Timeout))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutting down rpc server: %s", err)
		}
		return pn.Stop(shutdownCtx)
	},
}

var configCmd = &cli.Command{
	Name:  "config",
	Usage: "Print the default config",
	Action: func(cctx *cli.Context) error {
		out, err := config.ConfigComment(config.DefaultPipeline())
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
