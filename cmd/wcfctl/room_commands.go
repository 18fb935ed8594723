package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"wcferry/client"
)

func newRoomCommand(ctx *commandContext) *cobra.Command {
	roomCmd := &cobra.Command{
		Use:   "room",
		Short: "Manage chat room members",
	}

	add := &cobra.Command{
		Use:   "add <room> <wxid>...",
		Short: "Add members to a chat room",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.AddRoomMembers(c, args[0], args[1:]...)
				if err != nil {
					return err
				}
				return ctx.printOK(cmd, "add members", ok)
			})
		},
	}

	del := &cobra.Command{
		Use:   "del <room> <wxid>...",
		Short: "Remove members from a chat room",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.DelRoomMembers(c, args[0], args[1:]...)
				if err != nil {
					return err
				}
				return ctx.printOK(cmd, "delete members", ok)
			})
		},
	}

	roomCmd.AddCommand(add, del)
	return roomCmd
}

func newFriendCommand(ctx *commandContext) *cobra.Command {
	friendCmd := &cobra.Command{
		Use:   "friend",
		Short: "Handle friend requests",
	}

	var scene int32
	accept := &cobra.Command{
		Use:   "accept <v3> <v4>",
		Short: "Accept a friend request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.AcceptFriend(c, args[0], args[1], scene)
				if err != nil {
					return err
				}
				return ctx.printOK(cmd, "accept friend", ok)
			})
		},
	}
	accept.Flags().Int32Var(&scene, "scene", 30, "Scene the request came from (30 is a QR code scan)")

	friendCmd.AddCommand(accept)
	return friendCmd
}

func newMiscCommands(ctx *commandContext) []*cobra.Command {
	decrypt := &cobra.Command{
		Use:   "decrypt-image <src> <dst>",
		Short: "Decrypt a stored image on the worker's disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.DecryptImage(c, args[0], args[1])
				if err != nil {
					return err
				}
				return ctx.printOK(cmd, "decrypt image", ok)
			})
		},
	}

	transfer := &cobra.Command{
		Use:   "transfer <wxid> <transferid> <transactionid>",
		Short: "Receive a money transfer",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.RecvTransfer(c, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				return ctx.printOK(cmd, "receive transfer", ok)
			})
		},
	}

	var pyqID string
	pyq := &cobra.Command{
		Use:   "pyq",
		Short: "Refresh the moments timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(pyqID, 10, 64)
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.RefreshPyq(c, id)
				if err != nil {
					return err
				}
				return ctx.printOK(cmd, "refresh pyq", ok)
			})
		},
	}
	pyq.Flags().StringVar(&pyqID, "id", "0", "Start from this moment id (0 for the newest)")

	return []*cobra.Command{decrypt, transfer, pyq}
}
