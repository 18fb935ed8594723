// Package message defines the envelopes exchanged with the wcferry worker.
//
// Every command is a Request carrying a Function selector and at most one
// payload variant; every reply (and every pushed event) is a Response
// carrying at most one response variant. Both unions are closed: only the
// types declared in this package implement RequestPayload / ResponsePayload.
//
//	Request  { func: Function, payload: Empty | Str | *TextMsg | *PathMsg | ... | nil }
//	Response { func: Function, payload: Status | Str | *WxMsg | *Contacts | ... | nil }
//
// On the wire a nil slice or map and an empty one are the same envelope, and
// so is a nil record pointer and a zero record. Decoding yields nil slices
// and empty, non-nil maps; compare lists with len, not against nil.
package message

// Request is the outbound envelope.
type Request struct {
	Func    Function
	Payload RequestPayload // nil when the function takes no argument
}

// Response is the inbound envelope. A nil Payload means either success with
// no data or a remote-side failure; callers disambiguate by context.
type Response struct {
	Func    Function
	Payload ResponsePayload
}

// RequestPayload is implemented by every request variant.
type RequestPayload interface {
	isRequestPayload()
}

// ResponsePayload is implemented by every response variant.
type ResponsePayload interface {
	isResponsePayload()
}

// Request variants.
type (
	// Empty is an explicitly present, field-less payload.
	Empty struct{}
	// Str is shared by both unions.
	Str    string
	Uint64 uint64
	Flag   bool
)

// Response-only scalar variant.
type Status int32

func (Empty) isRequestPayload()         {}
func (Str) isRequestPayload()           {}
func (Uint64) isRequestPayload()        {}
func (Flag) isRequestPayload()          {}
func (*TextMsg) isRequestPayload()      {}
func (*PathMsg) isRequestPayload()      {}
func (*DbQuery) isRequestPayload()      {}
func (*Verification) isRequestPayload() {}
func (*MemberMgmt) isRequestPayload()   {}
func (*XmlMsg) isRequestPayload()       {}
func (*DecPath) isRequestPayload()      {}
func (*Transfer) isRequestPayload()     {}

func (Status) isResponsePayload()    {}
func (Str) isResponsePayload()       {}
func (*WxMsg) isResponsePayload()    {}
func (*MsgTypes) isResponsePayload() {}
func (*Contacts) isResponsePayload() {}
func (*DbNames) isResponsePayload()  {}
func (*DbTables) isResponsePayload() {}
func (*DbRows) isResponsePayload()   {}
func (*UserInfo) isResponsePayload() {}
