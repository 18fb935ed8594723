package codec

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"wcferry/message"
)

func encodeTextMsg(m *message.TextMsg) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.Msg)
	b = appendString(b, 2, m.Receiver)
	return appendString(b, 3, m.Aters)
}

func decodeTextMsg(data []byte) (*message.TextMsg, error) {
	m := &message.TextMsg{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Msg)
		case 2:
			return consumeString(typ, b, &m.Receiver)
		case 3:
			return consumeString(typ, b, &m.Aters)
		}
		return 0, nil
	})
}

func encodePathMsg(m *message.PathMsg) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.Path)
	return appendString(b, 2, m.Receiver)
}

func decodePathMsg(data []byte) (*message.PathMsg, error) {
	m := &message.PathMsg{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Path)
		case 2:
			return consumeString(typ, b, &m.Receiver)
		}
		return 0, nil
	})
}

func encodeDbQuery(m *message.DbQuery) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.Db)
	return appendString(b, 2, m.Sql)
}

func decodeDbQuery(data []byte) (*message.DbQuery, error) {
	m := &message.DbQuery{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Db)
		case 2:
			return consumeString(typ, b, &m.Sql)
		}
		return 0, nil
	})
}

func encodeVerification(m *message.Verification) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.V3)
	b = appendString(b, 2, m.V4)
	return appendInt32(b, 3, m.Scene)
}

func decodeVerification(data []byte) (*message.Verification, error) {
	m := &message.Verification{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.V3)
		case 2:
			return consumeString(typ, b, &m.V4)
		case 3:
			return consumeInt32(typ, b, &m.Scene)
		}
		return 0, nil
	})
}

func encodeMemberMgmt(m *message.MemberMgmt) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.RoomID)
	return appendString(b, 2, m.Wxids)
}

func decodeMemberMgmt(data []byte) (*message.MemberMgmt, error) {
	m := &message.MemberMgmt{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.RoomID)
		case 2:
			return consumeString(typ, b, &m.Wxids)
		}
		return 0, nil
	})
}

func encodeXmlMsg(m *message.XmlMsg) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.Receiver)
	b = appendString(b, 2, m.Content)
	b = appendString(b, 3, m.Path)
	return appendInt32(b, 4, m.Type)
}

func decodeXmlMsg(data []byte) (*message.XmlMsg, error) {
	m := &message.XmlMsg{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Receiver)
		case 2:
			return consumeString(typ, b, &m.Content)
		case 3:
			return consumeString(typ, b, &m.Path)
		case 4:
			return consumeInt32(typ, b, &m.Type)
		}
		return 0, nil
	})
}

func encodeDecPath(m *message.DecPath) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.Src)
	return appendString(b, 2, m.Dst)
}

func decodeDecPath(data []byte) (*message.DecPath, error) {
	m := &message.DecPath{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Src)
		case 2:
			return consumeString(typ, b, &m.Dst)
		}
		return 0, nil
	})
}

func encodeTransfer(m *message.Transfer) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.Wxid)
	b = appendString(b, 2, m.Tfid)
	return appendString(b, 3, m.Taid)
}

func decodeTransfer(data []byte) (*message.Transfer, error) {
	m := &message.Transfer{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Wxid)
		case 2:
			return consumeString(typ, b, &m.Tfid)
		case 3:
			return consumeString(typ, b, &m.Taid)
		}
		return 0, nil
	})
}

func encodeWxMsg(m *message.WxMsg) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendBool(b, 1, m.IsSelf)
	b = appendBool(b, 2, m.IsGroup)
	b = appendUint64(b, 3, m.ID)
	b = appendUint64(b, 4, uint64(m.Type))
	b = appendUint64(b, 5, uint64(m.Ts))
	b = appendString(b, 6, m.RoomID)
	b = appendString(b, 7, m.Content)
	b = appendString(b, 8, m.Sender)
	b = appendString(b, 9, m.Sign)
	b = appendString(b, 10, m.Thumb)
	b = appendString(b, 11, m.Extra)
	return appendString(b, 12, m.Xml)
}

func decodeWxMsg(data []byte) (*message.WxMsg, error) {
	m := &message.WxMsg{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBool(typ, b, &m.IsSelf)
		case 2:
			return consumeBool(typ, b, &m.IsGroup)
		case 3:
			return consumeUint64(typ, b, &m.ID)
		case 4:
			return consumeUint32(typ, b, &m.Type)
		case 5:
			return consumeUint32(typ, b, &m.Ts)
		case 6:
			return consumeString(typ, b, &m.RoomID)
		case 7:
			return consumeString(typ, b, &m.Content)
		case 8:
			return consumeString(typ, b, &m.Sender)
		case 9:
			return consumeString(typ, b, &m.Sign)
		case 10:
			return consumeString(typ, b, &m.Thumb)
		case 11:
			return consumeString(typ, b, &m.Extra)
		case 12:
			return consumeString(typ, b, &m.Xml)
		}
		return 0, nil
	})
}

// map<int32, string> types = 1; entries are written in key order.
func encodeMsgTypes(m *message.MsgTypes) []byte {
	if m == nil {
		return nil
	}
	keys := make([]int32, 0, len(m.Types))
	for k := range m.Types {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var b []byte
	for _, k := range keys {
		var entry []byte
		entry = appendOneofVarint(entry, 1, uint64(int64(k)))
		entry = appendOneofString(entry, 2, m.Types[k])
		b = appendMessage(b, 1, entry)
	}
	return b
}

func decodeMsgTypes(data []byte) (*message.MsgTypes, error) {
	m := &message.MsgTypes{Types: make(map[int32]string)}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		entry, n, err := consumeMessage(typ, b)
		if err != nil {
			return 0, err
		}
		var (
			key   int32
			value string
		)
		err = walkFields(entry, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			switch num {
			case 1:
				return consumeInt32(typ, b, &key)
			case 2:
				return consumeString(typ, b, &value)
			}
			return 0, nil
		})
		if err != nil {
			return 0, err
		}
		m.Types[key] = value
		return n, nil
	})
}

func encodeContact(c *message.Contact) []byte {
	var b []byte
	b = appendString(b, 1, c.Wxid)
	b = appendString(b, 2, c.Code)
	b = appendString(b, 3, c.Remark)
	b = appendString(b, 4, c.Name)
	b = appendString(b, 5, c.Country)
	b = appendString(b, 6, c.Province)
	b = appendString(b, 7, c.City)
	return appendInt32(b, 8, c.Gender)
}

func decodeContact(data []byte) (*message.Contact, error) {
	c := &message.Contact{}
	return c, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &c.Wxid)
		case 2:
			return consumeString(typ, b, &c.Code)
		case 3:
			return consumeString(typ, b, &c.Remark)
		case 4:
			return consumeString(typ, b, &c.Name)
		case 5:
			return consumeString(typ, b, &c.Country)
		case 6:
			return consumeString(typ, b, &c.Province)
		case 7:
			return consumeString(typ, b, &c.City)
		case 8:
			return consumeInt32(typ, b, &c.Gender)
		}
		return 0, nil
	})
}

func encodeContacts(m *message.Contacts) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	var b []byte
	for i, c := range m.Contacts {
		if c == nil {
			return nil, fmt.Errorf("%w: nil contact at index %d", ErrUnsupportedType, i)
		}
		b = appendMessage(b, 1, encodeContact(c))
	}
	return b, nil
}

func decodeContacts(data []byte) (*message.Contacts, error) {
	m := &message.Contacts{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		return consumeRecord(typ, b, decodeContact, func(c *message.Contact) { m.Contacts = append(m.Contacts, c) })
	})
}

func encodeDbNames(m *message.DbNames) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	for _, name := range m.Names {
		b = appendOneofString(b, 1, name)
	}
	return b
}

func decodeDbNames(data []byte) (*message.DbNames, error) {
	m := &message.DbNames{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		var name string
		n, err := consumeString(typ, b, &name)
		if err != nil {
			return 0, err
		}
		m.Names = append(m.Names, name)
		return n, nil
	})
}

func encodeDbTable(t *message.DbTable) []byte {
	var b []byte
	b = appendString(b, 1, t.Name)
	return appendString(b, 2, t.Sql)
}

func decodeDbTable(data []byte) (*message.DbTable, error) {
	t := &message.DbTable{}
	return t, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &t.Name)
		case 2:
			return consumeString(typ, b, &t.Sql)
		}
		return 0, nil
	})
}

func encodeDbTables(m *message.DbTables) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	var b []byte
	for i, t := range m.Tables {
		if t == nil {
			return nil, fmt.Errorf("%w: nil table at index %d", ErrUnsupportedType, i)
		}
		b = appendMessage(b, 1, encodeDbTable(t))
	}
	return b, nil
}

func decodeDbTables(data []byte) (*message.DbTables, error) {
	m := &message.DbTables{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		return consumeRecord(typ, b, decodeDbTable, func(t *message.DbTable) { m.Tables = append(m.Tables, t) })
	})
}

func encodeDbField(f *message.DbField) []byte {
	var b []byte
	b = appendInt32(b, 1, f.Type)
	b = appendString(b, 2, f.Column)
	return appendBytes(b, 3, f.Content)
}

func decodeDbField(data []byte) (*message.DbField, error) {
	f := &message.DbField{}
	return f, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeInt32(typ, b, &f.Type)
		case 2:
			return consumeString(typ, b, &f.Column)
		case 3:
			return consumeBytes(typ, b, &f.Content)
		}
		return 0, nil
	})
}

func encodeDbRow(r *message.DbRow) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	var b []byte
	for i, f := range r.Fields {
		if f == nil {
			return nil, fmt.Errorf("%w: nil field at index %d", ErrUnsupportedType, i)
		}
		b = appendMessage(b, 1, encodeDbField(f))
	}
	return b, nil
}

func decodeDbRow(data []byte) (*message.DbRow, error) {
	r := &message.DbRow{}
	return r, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		return consumeRecord(typ, b, decodeDbField, func(f *message.DbField) { r.Fields = append(r.Fields, f) })
	})
}

func encodeDbRows(m *message.DbRows) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	var b []byte
	for i, r := range m.Rows {
		if r == nil {
			return nil, fmt.Errorf("%w: nil row at index %d", ErrUnsupportedType, i)
		}
		row, err := encodeDbRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		b = appendMessage(b, 1, row)
	}
	return b, nil
}

func decodeDbRows(data []byte) (*message.DbRows, error) {
	m := &message.DbRows{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		return consumeRecord(typ, b, decodeDbRow, func(r *message.DbRow) { m.Rows = append(m.Rows, r) })
	})
}

func encodeUserInfo(m *message.UserInfo) []byte {
	if m == nil {
		return nil
	}
	var b []byte
	b = appendString(b, 1, m.Wxid)
	b = appendString(b, 2, m.Name)
	b = appendString(b, 3, m.Mobile)
	return appendString(b, 4, m.Home)
}

func decodeUserInfo(data []byte) (*message.UserInfo, error) {
	m := &message.UserInfo{}
	return m, walkFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Wxid)
		case 2:
			return consumeString(typ, b, &m.Name)
		case 3:
			return consumeString(typ, b, &m.Mobile)
		case 4:
			return consumeString(typ, b, &m.Home)
		}
		return 0, nil
	})
}
