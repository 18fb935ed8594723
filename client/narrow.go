package client

import "wcferry/message"

// The helpers below never fail. A reply of the wrong variant is treated like
// an absent one, which hides protocol drift from callers that only look at
// the narrowed value.

func statusIs(p message.ResponsePayload, want int32) bool {
	st, ok := p.(message.Status)
	return ok && int32(st) == want
}

func asString(p message.ResponsePayload) string {
	if s, ok := p.(message.Str); ok {
		return string(s)
	}
	return ""
}
