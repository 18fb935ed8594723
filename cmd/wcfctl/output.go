package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"wcferry/message"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes v as JSON when asked to, or the plain text otherwise.
func (c *commandContext) printResult(cmd *cobra.Command, v any, plain string) error {
	if c.wantJSON() {
		return writeJSON(cmd, v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), plain)
	return err
}

func (c *commandContext) printTable(cmd *cobra.Command, v any, headers []string, rows [][]string, aligns []columnAlignment) error {
	if c.wantJSON() {
		return writeJSON(cmd, v)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "(none)")
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
	return err
}

// printOK reports the narrowed result of a side-effect command. A false
// result is an error so scripts can rely on the exit status.
func (c *commandContext) printOK(cmd *cobra.Command, what string, ok bool) error {
	if c.wantJSON() {
		if err := writeJSON(cmd, map[string]bool{"ok": ok}); err != nil {
			return err
		}
	} else if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", what)
	}
	if !ok {
		return fmt.Errorf("%s: worker reported failure", what)
	}
	return nil
}

// Field types as reported by the worker's SQLite layer.
const (
	fieldInt   = 1
	fieldFloat = 2
	fieldText  = 3
	fieldBlob  = 4
	fieldNull  = 5
)

func formatField(f *message.DbField) string {
	switch f.Type {
	case fieldNull:
		return "NULL"
	case fieldBlob:
		if len(f.Content) > 16 {
			return hex.EncodeToString(f.Content[:16]) + "… (" + strconv.Itoa(len(f.Content)) + " bytes)"
		}
		return hex.EncodeToString(f.Content)
	}
	return string(f.Content)
}

func rowsTable(rows []*message.DbRow) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	var headers []string
	for _, f := range rows[0].Fields {
		headers = append(headers, f.Column)
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells := make([]string, 0, len(r.Fields))
		for _, f := range r.Fields {
			cells = append(cells, formatField(f))
		}
		out = append(out, cells)
	}
	return headers, out
}

func msgTypesTable(types map[int32]string) [][]string {
	codes := make([]int32, 0, len(types))
	for code := range types {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, []string{strconv.Itoa(int(code)), types[code]})
	}
	return rows
}

func genderName(g int32) string {
	switch g {
	case 1:
		return "male"
	case 2:
		return "female"
	}
	return ""
}

func formatEvent(m *message.WxMsg) string {
	where := m.Sender
	if m.IsGroup {
		where = m.Sender + "@" + m.RoomID
	}
	content := m.Content
	if content == "" && m.Extra != "" {
		content = m.Extra
	}
	self := ""
	if m.IsSelf {
		self = " (self)"
	}
	return fmt.Sprintf("[%d] type=%d from=%s%s: %s", m.ID, m.Type, where, self, content)
}
