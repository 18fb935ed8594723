package client

import (
	"context"
	"fmt"

	"wcferry/message"
)

// DecryptImage decrypts a received .dat image at src into dst. Both paths
// are on the worker's machine.
func (s *Session) DecryptImage(ctx context.Context, src, dst string) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncDecryptImage, &message.DecPath{Src: src, Dst: dst})
	if err != nil {
		return false, fmt.Errorf("decrypt image: %w", err)
	}
	return statusIs(resp, 1), nil
}

func (s *Session) RecvTransfer(ctx context.Context, wxid, tfid, taid string) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncRecvTransfer, &message.Transfer{Wxid: wxid, Tfid: tfid, Taid: taid})
	if err != nil {
		return false, fmt.Errorf("recv transfer: %w", err)
	}
	return statusIs(resp, 1), nil
}

// RefreshPyq refreshes the moments feed starting at id, 0 for the newest.
// The worker signals failure with -1 only.
func (s *Session) RefreshPyq(ctx context.Context, id uint64) (bool, error) {
	resp, err := s.Invoke(ctx, message.FuncRefreshPyq, message.Uint64(id))
	if err != nil {
		return false, fmt.Errorf("refresh pyq: %w", err)
	}
	if st, ok := resp.(message.Status); ok {
		return st != -1, nil
	}
	return false, nil
}
