package client

import (
	"context"
	"fmt"
	"strings"

	"wcferry/message"
)

// SendText sends msg to receiver, a wxid or a room id. In a room, aters are
// the wxids to @; msg must contain a matching "@name" for each of them.
// Any reply counts as delivered: the worker's status for text is unreliable.
func (s *Session) SendText(ctx context.Context, msg, receiver string, aters ...string) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncSendTxt, &message.TextMsg{
		Msg:      msg,
		Receiver: receiver,
		Aters:    strings.Join(aters, ","),
	})
	if err != nil {
		return false, fmt.Errorf("send text: %w", err)
	}
	return resp != nil, nil
}

// SendImage sends the image at path, a path on the worker's machine. Like
// SendText it only checks that a reply arrived.
func (s *Session) SendImage(ctx context.Context, path, receiver string) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncSendImg, &message.PathMsg{Path: path, Receiver: receiver})
	if err != nil {
		return false, fmt.Errorf("send image: %w", err)
	}
	return resp != nil, nil
}

func (s *Session) SendFile(ctx context.Context, path, receiver string) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncSendFile, &message.PathMsg{Path: path, Receiver: receiver})
	if err != nil {
		return false, fmt.Errorf("send file: %w", err)
	}
	return statusIs(resp, 1), nil
}

// SendXml sends a raw XML card. path is an optional thumbnail and typ the
// card's message type code.
func (s *Session) SendXml(ctx context.Context, receiver, content, path string, typ int32) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncSendXml, &message.XmlMsg{
		Receiver: receiver,
		Content:  content,
		Path:     path,
		Type:     typ,
	})
	if err != nil {
		return false, fmt.Errorf("send xml: %w", err)
	}
	return statusIs(resp, 1), nil
}

func (s *Session) SendEmotion(ctx context.Context, path, receiver string) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncSendEmotion, &message.PathMsg{Path: path, Receiver: receiver})
	if err != nil {
		return false, fmt.Errorf("send emotion: %w", err)
	}
	return statusIs(resp, 1), nil
}
