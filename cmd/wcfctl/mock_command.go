package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wcferry/message"
	"wcferry/server"
)

func newMockCommand(ctx *commandContext) *cobra.Command {
	var advertise bool
	var pushEvery time.Duration
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a mock worker answering with demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cmd.Context()
			cfg := ctx.config

			svr := server.NewServer(cfg.ClientOptions().Transport)
			for fn, h := range server.DemoHandlers() {
				svr.Handle(fn, h)
			}
			if err := svr.Listen(cfg.Transport.ControlAddr, cfg.Transport.EventAddr); err != nil {
				return err
			}
			go func() { _ = svr.Serve() }()
			defer func() {
				if err := svr.Shutdown(5 * time.Second); err != nil {
					logrus.WithError(err).Warn("shutdown")
				}
			}()

			if advertise {
				reg, err := ctx.etcdRegistry()
				if err != nil {
					return err
				}
				if reg == nil {
					return fmt.Errorf("--advertise needs registry.endpoints in the config")
				}
				defer reg.Close()
				if err := svr.Advertise(c, reg, ctx.endpointName(), cfg.Registry.TTLSeconds); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "mock worker on %s (events %s)\n", cfg.Transport.ControlAddr, cfg.Transport.EventAddr)

			var tick <-chan time.Time
			if pushEvery > 0 {
				ticker := time.NewTicker(pushEvery)
				defer ticker.Stop()
				tick = ticker.C
			}
			var id uint64
			for {
				select {
				case <-c.Done():
					return nil
				case <-tick:
					id++
					err := svr.Push(&message.WxMsg{
						ID:      id,
						Type:    1,
						Sender:  "wxid_alice",
						Content: fmt.Sprintf("demo message %d", id),
						Ts:      uint32(time.Now().Unix()),
					})
					if err != nil && !errors.Is(err, server.ErrEventsDisabled) {
						logrus.WithError(err).Warn("push")
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&advertise, "advertise", false, "Register the mock worker in the registry")
	cmd.Flags().DurationVar(&pushEvery, "push-every", 0, "Push a demo message at this interval (0 disables)")
	return cmd
}
