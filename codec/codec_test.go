package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"wcferry/message"
)

func TestRequestRoundTrip(t *testing.T) {
	c := &ProtobufCodec{}

	cases := []*message.Request{
		{Func: message.FuncIsLogin},
		{Func: message.FuncGetSelfWxid, Payload: message.Empty{}},
		{Func: message.FuncGetDbTables, Payload: message.Str("MicroMsg.db")},
		{Func: message.FuncGetDbTables, Payload: message.Str("")},
		{Func: message.FuncRefreshPyq, Payload: message.Uint64(0)},
		{Func: message.FuncRefreshPyq, Payload: message.Uint64(1<<63 + 5)},
		{Func: message.FuncEnableRecvTxt, Payload: message.Flag(true)},
		{Func: message.FuncEnableRecvTxt, Payload: message.Flag(false)},
		{Func: message.FuncSendTxt, Payload: &message.TextMsg{Msg: "Hello @A @B", Receiver: "123@chatroom", Aters: "wxid_a,wxid_b"}},
		{Func: message.FuncSendImg, Payload: &message.PathMsg{Path: `C:\pics\1.jpg`, Receiver: "filehelper"}},
		{Func: message.FuncExecDbQuery, Payload: &message.DbQuery{Db: "MicroMsg.db", Sql: "SELECT * FROM Contact;"}},
		{Func: message.FuncAcceptFriend, Payload: &message.Verification{V3: "v3_x@stranger", V4: "v4_y@stranger", Scene: 17}},
		{Func: message.FuncAcceptFriend, Payload: &message.Verification{Scene: -3}},
		{Func: message.FuncAddRoomMembers, Payload: &message.MemberMgmt{RoomID: "1@chatroom", Wxids: "wxid_a,wxid_b"}},
		{Func: message.FuncSendXml, Payload: &message.XmlMsg{Receiver: "filehelper", Content: "<msg/>", Path: `C:\a.png`, Type: 0x21}},
		{Func: message.FuncDecryptImage, Payload: &message.DecPath{Src: "a.dat", Dst: "a.jpg"}},
		{Func: message.FuncRecvTransfer, Payload: &message.Transfer{Wxid: "wxid_a", Tfid: "1000", Taid: "2000"}},
		{Func: message.FuncSendTxt, Payload: &message.TextMsg{}},
		{},
	}

	for _, want := range cases {
		data, err := c.Encode(want)
		require.NoError(t, err)

		got := &message.Request{}
		require.NoError(t, c.Decode(data, got))
		assert.Equal(t, want, got, "func %s payload %T", want.Func, want.Payload)
	}
}

func TestResponseRoundTrip(t *testing.T) {
	c := &ProtobufCodec{}

	cases := []*message.Response{
		{Func: message.FuncIsLogin, Payload: message.Status(1)},
		{Func: message.FuncRefreshPyq, Payload: message.Status(-1)},
		{Func: message.FuncSendTxt, Payload: message.Status(0)},
		{Func: message.FuncGetSelfWxid, Payload: message.Str("wxid_self")},
		{Func: message.FuncGetSelfWxid},
		{Func: message.FuncEnableRecvTxt, Payload: &message.WxMsg{
			IsSelf: true, IsGroup: true, ID: 9876543210, Type: 1, Ts: 1700000000,
			RoomID: "1@chatroom", Content: "hi", Sender: "wxid_a", Sign: "s",
			Thumb: "t.jpg", Extra: "e.jpg", Xml: "<msgsource/>",
		}},
		{Func: message.FuncGetMsgTypes, Payload: &message.MsgTypes{Types: map[int32]string{1: "文字", 3: "图片", 10000: "红包、系统消息", -1: "negative"}}},
		{Func: message.FuncGetContacts, Payload: &message.Contacts{Contacts: []*message.Contact{
			{Wxid: "wxid_a", Code: "a", Remark: "r", Name: "A", Country: "CN", Province: "GD", City: "SZ", Gender: 1},
			{Wxid: "filehelper", Name: "文件传输助手"},
		}}},
		{Func: message.FuncGetContacts, Payload: &message.Contacts{}},
		{Func: message.FuncGetDbNames, Payload: &message.DbNames{Names: []string{"MicroMsg.db", "", "MSG0.db"}}},
		{Func: message.FuncGetDbTables, Payload: &message.DbTables{Tables: []*message.DbTable{{Name: "Contact", Sql: "CREATE TABLE Contact(...)"}}}},
		{Func: message.FuncExecDbQuery, Payload: &message.DbRows{Rows: []*message.DbRow{
			{Fields: []*message.DbField{{Type: 1, Column: "UserName", Content: []byte("wxid_a")}, {Type: 5, Column: "Null"}}},
			{},
		}}},
		{Func: message.FuncGetUserInfo, Payload: &message.UserInfo{Wxid: "wxid_self", Name: "me", Mobile: "138", Home: `C:\WeChat Files`}},
	}

	for _, want := range cases {
		data, err := c.Encode(want)
		require.NoError(t, err)

		got := &message.Response{}
		require.NoError(t, c.Decode(data, got))
		assert.Equal(t, want, got, "func %s payload %T", want.Func, want.Payload)
	}
}

func TestWireCompatibility(t *testing.T) {
	c := &ProtobufCodec{}

	// Bytes as produced by the reference protobuf encoders for the same messages.
	data, err := c.Encode(&message.Request{Func: message.FuncIsLogin})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x01}, data)

	data, err = c.Encode(&message.Request{Func: message.FuncEnableRecvTxt, Payload: message.Flag(true)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x30, 0x68, 0x01}, data)

	data, err = c.Encode(&message.Request{Func: message.FuncGetDbTables, Payload: message.Str("a")})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x14, 0x1a, 0x01, 'a'}, data)

	data, err = c.Encode(&message.Response{Func: message.FuncIsLogin, Payload: message.Status(1)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x08, 0x01, 0x10, 0x01}, data)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(message.FuncGetSelfWxid))
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "from a newer worker")
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendString(b, "wxid_self")
	b = protowire.AppendTag(b, 100, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 42)

	resp := &message.Response{}
	require.NoError(t, (&ProtobufCodec{}).Decode(b, resp))
	assert.Equal(t, message.FuncGetSelfWxid, resp.Func)
	assert.Equal(t, message.Str("wxid_self"), resp.Payload)
}

func TestDecodeMalformed(t *testing.T) {
	c := &ProtobufCodec{}
	valid, err := c.Encode(&message.Response{Func: message.FuncGetUserInfo, Payload: &message.UserInfo{Wxid: "wxid_self", Name: "me"}})
	require.NoError(t, err)

	wrongType := protowire.AppendTag(nil, 2, protowire.BytesType) // status must be a varint
	wrongType = protowire.AppendString(wrongType, "x")

	nestedWrongType := protowire.AppendTag(nil, 10, protowire.BytesType)
	nestedWrongType = protowire.AppendBytes(nestedWrongType, protowire.AppendVarint(protowire.AppendTag(nil, 1, protowire.VarintType), 1))

	badUTF8 := protowire.AppendTag(nil, 3, protowire.BytesType)
	badUTF8 = protowire.AppendBytes(badUTF8, []byte{'w', 0xff, 0xfe})

	nestedBadUTF8 := protowire.AppendTag(nil, 10, protowire.BytesType)
	nestedBadUTF8 = protowire.AppendBytes(nestedBadUTF8, protowire.AppendBytes(protowire.AppendTag(nil, 2, protowire.BytesType), []byte{0xc3, 0x28}))

	cases := map[string][]byte{
		"invalid utf-8":        badUTF8,
		"nested invalid utf-8": nestedBadUTF8,
		"truncated":            valid[:len(valid)-3],
		"bad tag":              {0x00},
		"unterminated":         {0x08, 0x80},
		"wrong wire type":      wrongType,
		"nested wrong type":    nestedWrongType,
		"length past buffer":   {0x1a, 0x05, 'a'},
	}
	for name, data := range cases {
		prev := &message.Response{Func: message.FuncReserved, Payload: message.Str("untouched")}
		err := c.Decode(data, prev)
		assert.ErrorIs(t, err, ErrMalformedMessage, name)
		assert.Equal(t, message.Str("untouched"), prev.Payload, name)
	}
}

func TestEncodeNilRecords(t *testing.T) {
	c := &ProtobufCodec{}

	// A nil record is written as an empty one, as generated code does.
	data, err := c.Encode(&message.Request{Func: message.FuncSendTxt, Payload: (*message.TextMsg)(nil)})
	require.NoError(t, err)
	req := &message.Request{}
	require.NoError(t, c.Decode(data, req))
	assert.Equal(t, &message.TextMsg{}, req.Payload)

	data, err = c.Encode(&message.Response{Func: message.FuncEnableRecvTxt, Payload: (*message.WxMsg)(nil)})
	require.NoError(t, err)
	resp := &message.Response{}
	require.NoError(t, c.Decode(data, resp))
	assert.Equal(t, &message.WxMsg{}, resp.Payload)

	for _, p := range []message.ResponsePayload{
		(*message.MsgTypes)(nil), (*message.Contacts)(nil), (*message.DbTables)(nil),
		(*message.DbRows)(nil), (*message.UserInfo)(nil),
	} {
		_, err := c.Encode(&message.Response{Func: message.FuncGetContacts, Payload: p})
		assert.NoError(t, err, "%T", p)
	}
}

func TestNilAndEmptyListsEncodeAlike(t *testing.T) {
	c := &ProtobufCodec{}

	pairs := map[string][2]message.ResponsePayload{
		"contacts":  {&message.Contacts{}, &message.Contacts{Contacts: []*message.Contact{}}},
		"msg types": {&message.MsgTypes{}, &message.MsgTypes{Types: map[int32]string{}}},
	}
	for name, pair := range pairs {
		a, err := c.Encode(&message.Response{Func: message.FuncGetContacts, Payload: pair[0]})
		require.NoError(t, err, name)
		b, err := c.Encode(&message.Response{Func: message.FuncGetContacts, Payload: pair[1]})
		require.NoError(t, err, name)
		assert.Equal(t, a, b, name)
	}

	data, err := c.Encode(&message.Response{Func: message.FuncGetMsgTypes, Payload: &message.MsgTypes{}})
	require.NoError(t, err)
	resp := &message.Response{}
	require.NoError(t, c.Decode(data, resp))
	assert.Equal(t, &message.MsgTypes{Types: map[int32]string{}}, resp.Payload)
}

func TestEncodeNilListElements(t *testing.T) {
	c := &ProtobufCodec{}

	cases := map[string]message.ResponsePayload{
		"contact": &message.Contacts{Contacts: []*message.Contact{{Wxid: "a"}, nil}},
		"table":   &message.DbTables{Tables: []*message.DbTable{nil}},
		"row":     &message.DbRows{Rows: []*message.DbRow{nil}},
		"field":   &message.DbRows{Rows: []*message.DbRow{{Fields: []*message.DbField{{Column: "a"}, nil}}}},
	}
	for name, p := range cases {
		var data []byte
		var err error
		assert.NotPanics(t, func() {
			data, err = c.Encode(&message.Response{Func: message.FuncExecDbQuery, Payload: p})
		}, name)
		assert.ErrorIs(t, err, ErrUnsupportedType, name)
		assert.Nil(t, data, name)
	}

	_, err := c.Encode((*message.Request)(nil))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = c.Encode((*message.Response)(nil))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUnsupportedTypes(t *testing.T) {
	c := &ProtobufCodec{}

	_, err := c.Encode("not an envelope")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	var notEnvelope struct{}
	assert.ErrorIs(t, c.Decode([]byte{0x08, 0x01}, &notEnvelope), ErrUnsupportedType)
	assert.Equal(t, CodecTypeProtobuf, c.Type())
}
