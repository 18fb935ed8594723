package message

// TextMsg sends text to a contact or chatroom. Aters is a comma separated
// list of wxids to mention; "notify@all" mentions everyone.
type TextMsg struct {
	Msg      string
	Receiver string
	Aters    string
}

// PathMsg references a local file on the worker's host.
type PathMsg struct {
	Path     string
	Receiver string
}

type DbQuery struct {
	Db  string
	Sql string
}

// Verification carries the tokens of a friend request.
type Verification struct {
	V3    string
	V4    string
	Scene int32
}

// MemberMgmt names a chatroom and a comma separated list of member wxids.
type MemberMgmt struct {
	RoomID string
	Wxids  string
}

type XmlMsg struct {
	Receiver string
	Content  string
	Path     string
	Type     int32
}

type DecPath struct {
	Src string
	Dst string
}

type Transfer struct {
	Wxid string
	Tfid string // transfer id
	Taid string // transaction id
}

// WxMsg is the pushed-event record delivered on the event channel.
type WxMsg struct {
	IsSelf  bool
	IsGroup bool
	ID      uint64
	Type    uint32
	Ts      uint32
	RoomID  string
	Content string
	Sender  string
	Sign    string
	Thumb   string
	Extra   string
	Xml     string
}

type MsgTypes struct {
	Types map[int32]string
}

type Contact struct {
	Wxid     string
	Code     string
	Remark   string
	Name     string
	Country  string
	Province string
	City     string
	Gender   int32
}

type Contacts struct {
	Contacts []*Contact
}

type DbNames struct {
	Names []string
}

type DbTable struct {
	Name string
	Sql  string
}

type DbTables struct {
	Tables []*DbTable
}

type DbField struct {
	Type    int32
	Column  string
	Content []byte
}

type DbRow struct {
	Fields []*DbField
}

type DbRows struct {
	Rows []*DbRow
}

type UserInfo struct {
	Wxid   string
	Name   string
	Mobile string
	Home   string
}
