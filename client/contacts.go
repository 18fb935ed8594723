package client

import (
	"context"
	"fmt"
	"strings"

	"wcferry/message"
)

// AcceptFriend accepts a friend request. v3 and v4 are the opaque tokens and
// scene the source code carried by the request message's XML.
func (s *Session) AcceptFriend(ctx context.Context, v3, v4 string, scene int32) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncAcceptFriend, &message.Verification{V3: v3, V4: v4, Scene: scene})
	if err != nil {
		return false, fmt.Errorf("accept friend: %w", err)
	}
	return statusIs(resp, 1), nil
}

func (s *Session) AddRoomMembers(ctx context.Context, roomID string, wxids ...string) (bool, error) {
	return s.roomMembers(ctx, message.FuncAddRoomMembers, roomID, wxids)
}

func (s *Session) DelRoomMembers(ctx context.Context, roomID string, wxids ...string) (bool, error) {
	return s.roomMembers(ctx, message.FuncDelRoomMembers, roomID, wxids)
}

func (s *Session) roomMembers(ctx context.Context, fn message.Function, roomID string, wxids []string) (bool, error) {
	resp, err := s.Invoke(ctx, fn, &message.MemberMgmt{RoomID: roomID, Wxids: strings.Join(wxids, ",")})
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", fn, roomID, err)
	}
	return statusIs(resp, 1), nil
}
