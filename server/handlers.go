package server

import (
	"errors"
	"sync"

	"wcferry/message"
)

// HandlerFunc answers one request. A nil payload replies with an empty
// envelope; returning ErrHangup drops the client without any reply.
type HandlerFunc func(req *message.Request) (message.ResponsePayload, error)

var ErrHangup = errors.New("server: hang up")

// handlerTable maps functions to handlers. Unknown functions get an empty
// reply, as the worker does.
type handlerTable struct {
	mu sync.RWMutex
	m  map[message.Function]HandlerFunc
}

func newHandlerTable() *handlerTable {
	return &handlerTable{m: make(map[message.Function]HandlerFunc)}
}

func (t *handlerTable) set(fn message.Function, h HandlerFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[fn] = h
}

func (t *handlerTable) get(fn message.Function) HandlerFunc {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.m[fn]
}

// Status returns a handler that always replies with st.
func Status(st int32) HandlerFunc {
	return func(*message.Request) (message.ResponsePayload, error) {
		return message.Status(st), nil
	}
}

// Reply returns a handler that always replies with p.
func Reply(p message.ResponsePayload) HandlerFunc {
	return func(*message.Request) (message.ResponsePayload, error) {
		return p, nil
	}
}

// Hangup returns a handler that drops the client.
func Hangup() HandlerFunc {
	return func(*message.Request) (message.ResponsePayload, error) {
		return nil, ErrHangup
	}
}

// DemoHandlers is a logged-in account with a few contacts, enough to drive
// every client operation locally.
func DemoHandlers() map[message.Function]HandlerFunc {
	return map[message.Function]HandlerFunc{
		message.FuncIsLogin:     Status(1),
		message.FuncGetSelfWxid: Reply(message.Str("wxid_demo")),
		message.FuncGetUserInfo: Reply(&message.UserInfo{
			Wxid: "wxid_demo", Name: "Demo", Mobile: "13800000000", Home: `C:\WeChat Files\wxid_demo`,
		}),
		message.FuncGetMsgTypes: Reply(&message.MsgTypes{Types: map[int32]string{
			1: "文字", 3: "图片", 34: "语音", 43: "视频", 47: "石头剪刀布 | 表情图片", 49: "共享实时位置、文件、转账、链接", 10000: "红包、系统消息",
		}}),
		message.FuncGetContacts: Reply(&message.Contacts{Contacts: []*message.Contact{
			{Wxid: "filehelper", Name: "文件传输助手"},
			{Wxid: "wxid_alice", Code: "alice", Name: "Alice", Country: "CN", Province: "Guangdong", City: "Shenzhen", Gender: 2},
			{Wxid: "123@chatroom", Name: "Demo Room"},
		}}),
		message.FuncGetDbNames: Reply(&message.DbNames{Names: []string{"MicroMsg.db", "ChatMsg.db"}}),
		message.FuncGetDbTables: func(req *message.Request) (message.ResponsePayload, error) {
			if db, _ := req.Payload.(message.Str); db != "MicroMsg.db" {
				return &message.DbTables{}, nil
			}
			return &message.DbTables{Tables: []*message.DbTable{
				{Name: "Contact", Sql: "CREATE TABLE Contact(UserName TEXT PRIMARY KEY, NickName TEXT)"},
			}}, nil
		},
		message.FuncExecDbQuery: Reply(&message.DbRows{Rows: []*message.DbRow{
			{Fields: []*message.DbField{
				{Type: 3, Column: "UserName", Content: []byte("wxid_alice")},
				{Type: 3, Column: "NickName", Content: []byte("Alice")},
			}},
		}}),
		message.FuncSendTxt:        Status(0),
		message.FuncSendImg:        Status(0),
		message.FuncSendFile:       Status(1),
		message.FuncSendXml:        Status(1),
		message.FuncSendEmotion:    Status(1),
		message.FuncAcceptFriend:   Status(1),
		message.FuncAddRoomMembers: Status(1),
		message.FuncDelRoomMembers: Status(1),
		message.FuncDecryptImage:   Status(1),
		message.FuncRecvTransfer:   Status(1),
		message.FuncRefreshPyq:     Status(0),
	}
}
