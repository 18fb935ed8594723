package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"wcferry/client"
)

func newListenCommand(ctx *commandContext) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print incoming messages until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				sub, err := s.EnableRecv(c)
				if err != nil {
					return err
				}
				logrus.WithField("session", s.ID()).Info("listening for messages")

				seen := 0
				for count <= 0 || seen < count {
					select {
					case <-c.Done():
						return nil
					case <-sub.Done():
						return nil
					default:
					}

					msg, err := sub.Poll()
					if err != nil {
						logrus.WithError(err).Warn("skipping event")
						continue
					}
					if msg == nil {
						continue
					}
					seen++
					if ctx.wantJSON() {
						if err := writeJSON(cmd, msg); err != nil {
							return err
						}
						continue
					}
					fmt.Fprintln(cmd.OutOrStdout(), formatEvent(msg))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after this many messages (0 for no limit)")
	return cmd
}
