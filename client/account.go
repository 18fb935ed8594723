package client

import (
	"context"
	"fmt"

	"wcferry/message"
)

// IsLogin reports whether the worker's account is logged in.
func (s *Session) IsLogin(ctx context.Context) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncIsLogin, nil)
	if err != nil {
		return false, fmt.Errorf("is login: %w", err)
	}
	return statusIs(resp, 1), nil
}

func (s *Session) SelfWxid(ctx context.Context) (string, error) {
	resp, err := s.Invoke(ctx, message.FuncGetSelfWxid, nil)
	if err != nil {
		return "", fmt.Errorf("self wxid: %w", err)
	}
	return asString(resp), nil
}

// UserInfo returns nil when the worker sends no profile.
func (s *Session) UserInfo(ctx context.Context) (*message.UserInfo, error) {
	resp, err := s.Invoke(ctx, message.FuncGetUserInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("user info: %w", err)
	}
	info, _ := resp.(*message.UserInfo)
	return info, nil
}

func (s *Session) Contacts(ctx context.Context) ([]*message.Contact, error) {
	resp, err := s.Invoke(ctx, message.FuncGetContacts, nil)
	if err != nil {
		return nil, fmt.Errorf("contacts: %w", err)
	}
	if c, ok := resp.(*message.Contacts); ok {
		return c.Contacts, nil
	}
	return nil, nil
}

// MsgTypes maps message type codes to their names. The map is never nil.
func (s *Session) MsgTypes(ctx context.Context) (map[int32]string, error) {
	resp, err := s.Invoke(ctx, message.FuncGetMsgTypes, nil)
	if err != nil {
		return nil, fmt.Errorf("msg types: %w", err)
	}
	if t, ok := resp.(*message.MsgTypes); ok && t.Types != nil {
		return t.Types, nil
	}
	return map[int32]string{}, nil
}
