package main

import (
	"context"

	"github.com/spf13/cobra"

	"wcferry/client"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send messages",
	}

	var aters []string
	text := &cobra.Command{
		Use:   "text <receiver> <message>",
		Short: "Send a text message; in rooms, --at wxids to mention",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.SendText(c, args[1], args[0], aters...)
				if err != nil {
					return err
				}
				return ctx.printOK(cmd, "send text", ok)
			})
		},
	}
	text.Flags().StringSliceVar(&aters, "at", nil, "wxids to @ (the message must contain @name for each)")

	pathCommand := func(use, short, what string, send func(*client.Session, context.Context, string, string) (bool, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <receiver> <path>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
					ok, err := send(s, c, args[1], args[0])
					if err != nil {
						return err
					}
					return ctx.printOK(cmd, what, ok)
				})
			},
		}
	}

	image := pathCommand("image", "Send an image from the worker's disk", "send image", (*client.Session).SendImage)
	file := pathCommand("file", "Send a file from the worker's disk", "send file", (*client.Session).SendFile)
	emotion := pathCommand("emotion", "Send a sticker from the worker's disk", "send emotion", (*client.Session).SendEmotion)

	var thumb, xmlType string
	xml := &cobra.Command{
		Use:   "xml <receiver> <content>",
		Short: "Send a raw XML card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseInt32(xmlType, "xml type")
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.SendXml(c, args[0], args[1], thumb, typ)
				if err != nil {
					return err
				}
				return ctx.printOK(cmd, "send xml", ok)
			})
		},
	}
	xml.Flags().StringVar(&thumb, "thumb", "", "Thumbnail path on the worker's disk")
	xml.Flags().StringVar(&xmlType, "type", "0x21", "Card message type")

	sendCmd.AddCommand(text, image, file, xml, emotion)
	return sendCmd
}
