package message

import "fmt"

// Function selects the remote handler for a Request.
type Function int32

const (
	FuncReserved       Function = 0x00
	FuncIsLogin        Function = 0x01
	FuncGetSelfWxid    Function = 0x10
	FuncGetMsgTypes    Function = 0x11
	FuncGetContacts    Function = 0x12
	FuncGetDbNames     Function = 0x13
	FuncGetDbTables    Function = 0x14
	FuncGetUserInfo    Function = 0x15
	FuncSendTxt        Function = 0x20
	FuncSendImg        Function = 0x21
	FuncSendFile       Function = 0x22
	FuncSendXml        Function = 0x23
	FuncSendEmotion    Function = 0x24
	FuncEnableRecvTxt  Function = 0x30
	FuncDisableRecvTxt Function = 0x40
	FuncExecDbQuery    Function = 0x50
	FuncAcceptFriend   Function = 0x51
	FuncRecvTransfer   Function = 0x52
	FuncRefreshPyq     Function = 0x53
	FuncDecryptImage   Function = 0x60
	FuncAddRoomMembers Function = 0x70
	FuncDelRoomMembers Function = 0x71
)

var functionNames = map[Function]string{
	FuncReserved:       "FUNC_RESERVED",
	FuncIsLogin:        "FUNC_IS_LOGIN",
	FuncGetSelfWxid:    "FUNC_GET_SELF_WXID",
	FuncGetMsgTypes:    "FUNC_GET_MSG_TYPES",
	FuncGetContacts:    "FUNC_GET_CONTACTS",
	FuncGetDbNames:     "FUNC_GET_DB_NAMES",
	FuncGetDbTables:    "FUNC_GET_DB_TABLES",
	FuncGetUserInfo:    "FUNC_GET_USER_INFO",
	FuncSendTxt:        "FUNC_SEND_TXT",
	FuncSendImg:        "FUNC_SEND_IMG",
	FuncSendFile:       "FUNC_SEND_FILE",
	FuncSendXml:        "FUNC_SEND_XML",
	FuncSendEmotion:    "FUNC_SEND_EMOTION",
	FuncEnableRecvTxt:  "FUNC_ENABLE_RECV_TXT",
	FuncDisableRecvTxt: "FUNC_DISABLE_RECV_TXT",
	FuncExecDbQuery:    "FUNC_EXEC_DB_QUERY",
	FuncAcceptFriend:   "FUNC_ACCEPT_FRIEND",
	FuncRecvTransfer:   "FUNC_RECV_TRANSFER",
	FuncRefreshPyq:     "FUNC_REFRESH_PYQ",
	FuncDecryptImage:   "FUNC_DECRYPT_IMAGE",
	FuncAddRoomMembers: "FUNC_ADD_ROOM_MEMBERS",
	FuncDelRoomMembers: "FUNC_DEL_ROOM_MEMBERS",
}

func (f Function) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FUNC_UNKNOWN(0x%02x)", int32(f))
}

// ReadOnly reports whether calling f has no side effects on the remote
// account, which makes it safe to repeat after a transport failure.
func (f Function) ReadOnly() bool {
	switch f {
	case FuncIsLogin, FuncGetSelfWxid, FuncGetMsgTypes, FuncGetContacts,
		FuncGetDbNames, FuncGetDbTables, FuncGetUserInfo:
		return true
	}
	return false
}
