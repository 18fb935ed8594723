package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"wcferry/message"
)

// Field numbers of the worker's Request message.
const (
	reqFunc  protowire.Number = 1
	reqEmpty protowire.Number = 2
	reqStr   protowire.Number = 3
	reqTxt   protowire.Number = 4
	reqFile  protowire.Number = 5
	reqQuery protowire.Number = 6
	reqV     protowire.Number = 7
	reqM     protowire.Number = 8
	reqXml   protowire.Number = 9
	reqDec   protowire.Number = 10
	reqTf    protowire.Number = 11
	reqUi64  protowire.Number = 12
	reqFlag  protowire.Number = 13
)

// Field numbers of the worker's Response message.
const (
	respFunc     protowire.Number = 1
	respStatus   protowire.Number = 2
	respStr      protowire.Number = 3
	respWxMsg    protowire.Number = 4
	respTypes    protowire.Number = 5
	respContacts protowire.Number = 6
	respDbs      protowire.Number = 7
	respTables   protowire.Number = 8
	respRows     protowire.Number = 9
	respUi       protowire.Number = 10
)

// ProtobufCodec speaks the protobuf wire format of the worker's
// Request/Response schema. It handles *message.Request and *message.Response.
//
// The payload oneof is always written when present, even for zero values,
// so that presence survives a round trip; scalar fields inside records follow
// proto3 rules and are omitted when zero.
type ProtobufCodec struct{}

func (c *ProtobufCodec) Encode(v any) ([]byte, error) {
	switch m := v.(type) {
	case *message.Request:
		if m == nil {
			return nil, fmt.Errorf("%w: nil request", ErrUnsupportedType)
		}
		return appendRequest(nil, m)
	case *message.Response:
		if m == nil {
			return nil, fmt.Errorf("%w: nil response", ErrUnsupportedType)
		}
		return appendResponse(nil, m)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func (c *ProtobufCodec) Decode(data []byte, v any) error {
	switch m := v.(type) {
	case *message.Request:
		req, err := decodeRequest(data)
		if err != nil {
			return err
		}
		*m = *req
		return nil
	case *message.Response:
		resp, err := decodeResponse(data)
		if err != nil {
			return err
		}
		*m = *resp
		return nil
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func (c *ProtobufCodec) Type() CodecType {
	return CodecTypeProtobuf
}

func appendRequest(b []byte, req *message.Request) ([]byte, error) {
	b = appendInt32(b, reqFunc, int32(req.Func))

	switch p := req.Payload.(type) {
	case nil:
	case message.Empty:
		b = appendMessage(b, reqEmpty, nil)
	case message.Str:
		b = appendOneofString(b, reqStr, string(p))
	case message.Uint64:
		b = appendOneofVarint(b, reqUi64, uint64(p))
	case message.Flag:
		b = appendOneofVarint(b, reqFlag, protowire.EncodeBool(bool(p)))
	case *message.TextMsg:
		b = appendMessage(b, reqTxt, encodeTextMsg(p))
	case *message.PathMsg:
		b = appendMessage(b, reqFile, encodePathMsg(p))
	case *message.DbQuery:
		b = appendMessage(b, reqQuery, encodeDbQuery(p))
	case *message.Verification:
		b = appendMessage(b, reqV, encodeVerification(p))
	case *message.MemberMgmt:
		b = appendMessage(b, reqM, encodeMemberMgmt(p))
	case *message.XmlMsg:
		b = appendMessage(b, reqXml, encodeXmlMsg(p))
	case *message.DecPath:
		b = appendMessage(b, reqDec, encodeDecPath(p))
	case *message.Transfer:
		b = appendMessage(b, reqTf, encodeTransfer(p))
	default:
		return nil, fmt.Errorf("%w: request payload %T", ErrUnsupportedType, p)
	}
	return b, nil
}

func appendResponse(b []byte, resp *message.Response) ([]byte, error) {
	b = appendInt32(b, respFunc, int32(resp.Func))

	switch p := resp.Payload.(type) {
	case nil:
	case message.Status:
		b = appendOneofVarint(b, respStatus, uint64(int64(p)))
	case message.Str:
		b = appendOneofString(b, respStr, string(p))
	case *message.WxMsg:
		b = appendMessage(b, respWxMsg, encodeWxMsg(p))
	case *message.MsgTypes:
		b = appendMessage(b, respTypes, encodeMsgTypes(p))
	case *message.Contacts:
		body, err := encodeContacts(p)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, respContacts, body)
	case *message.DbNames:
		b = appendMessage(b, respDbs, encodeDbNames(p))
	case *message.DbTables:
		body, err := encodeDbTables(p)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, respTables, body)
	case *message.DbRows:
		body, err := encodeDbRows(p)
		if err != nil {
			return nil, err
		}
		b = appendMessage(b, respRows, body)
	case *message.UserInfo:
		b = appendMessage(b, respUi, encodeUserInfo(p))
	default:
		return nil, fmt.Errorf("%w: response payload %T", ErrUnsupportedType, p)
	}
	return b, nil
}

func decodeRequest(data []byte) (*message.Request, error) {
	req := &message.Request{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case reqFunc:
			var f int32
			n, err := consumeInt32(typ, b, &f)
			req.Func = message.Function(f)
			return n, err
		case reqEmpty:
			_, n, err := consumeMessage(typ, b)
			req.Payload = message.Empty{}
			return n, err
		case reqStr:
			var s string
			n, err := consumeString(typ, b, &s)
			req.Payload = message.Str(s)
			return n, err
		case reqUi64:
			var v uint64
			n, err := consumeUint64(typ, b, &v)
			req.Payload = message.Uint64(v)
			return n, err
		case reqFlag:
			var v bool
			n, err := consumeBool(typ, b, &v)
			req.Payload = message.Flag(v)
			return n, err
		case reqTxt:
			return consumeRecord(typ, b, decodeTextMsg, func(m *message.TextMsg) { req.Payload = m })
		case reqFile:
			return consumeRecord(typ, b, decodePathMsg, func(m *message.PathMsg) { req.Payload = m })
		case reqQuery:
			return consumeRecord(typ, b, decodeDbQuery, func(m *message.DbQuery) { req.Payload = m })
		case reqV:
			return consumeRecord(typ, b, decodeVerification, func(m *message.Verification) { req.Payload = m })
		case reqM:
			return consumeRecord(typ, b, decodeMemberMgmt, func(m *message.MemberMgmt) { req.Payload = m })
		case reqXml:
			return consumeRecord(typ, b, decodeXmlMsg, func(m *message.XmlMsg) { req.Payload = m })
		case reqDec:
			return consumeRecord(typ, b, decodeDecPath, func(m *message.DecPath) { req.Payload = m })
		case reqTf:
			return consumeRecord(typ, b, decodeTransfer, func(m *message.Transfer) { req.Payload = m })
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func decodeResponse(data []byte) (*message.Response, error) {
	resp := &message.Response{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case respFunc:
			var f int32
			n, err := consumeInt32(typ, b, &f)
			resp.Func = message.Function(f)
			return n, err
		case respStatus:
			var s int32
			n, err := consumeInt32(typ, b, &s)
			resp.Payload = message.Status(s)
			return n, err
		case respStr:
			var s string
			n, err := consumeString(typ, b, &s)
			resp.Payload = message.Str(s)
			return n, err
		case respWxMsg:
			return consumeRecord(typ, b, decodeWxMsg, func(m *message.WxMsg) { resp.Payload = m })
		case respTypes:
			return consumeRecord(typ, b, decodeMsgTypes, func(m *message.MsgTypes) { resp.Payload = m })
		case respContacts:
			return consumeRecord(typ, b, decodeContacts, func(m *message.Contacts) { resp.Payload = m })
		case respDbs:
			return consumeRecord(typ, b, decodeDbNames, func(m *message.DbNames) { resp.Payload = m })
		case respTables:
			return consumeRecord(typ, b, decodeDbTables, func(m *message.DbTables) { resp.Payload = m })
		case respRows:
			return consumeRecord(typ, b, decodeDbRows, func(m *message.DbRows) { resp.Payload = m })
		case respUi:
			return consumeRecord(typ, b, decodeUserInfo, func(m *message.UserInfo) { resp.Payload = m })
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
