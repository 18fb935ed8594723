package client

import (
	"context"
	"fmt"

	"wcferry/message"
)

func (s *Session) DbNames(ctx context.Context) ([]string, error) {
	resp, err := s.Invoke(ctx, message.FuncGetDbNames, nil)
	if err != nil {
		return nil, fmt.Errorf("db names: %w", err)
	}
	if d, ok := resp.(*message.DbNames); ok {
		return d.Names, nil
	}
	return nil, nil
}

func (s *Session) DbTables(ctx context.Context, db string) ([]*message.DbTable, error) {
	resp, err := s.Invoke(ctx, message.FuncGetDbTables, message.Str(db))
	if err != nil {
		return nil, fmt.Errorf("db tables %s: %w", db, err)
	}
	if t, ok := resp.(*message.DbTables); ok {
		return t.Tables, nil
	}
	return nil, nil
}

// ExecDbQuery runs sql against one of the worker's databases. Field contents
// are raw bytes; DbField.Type tells how to read them.
func (s *Session) ExecDbQuery(ctx context.Context, db, sql string) ([]*message.DbRow, error) {
	resp, err := s.Invoke(ctx, message.FuncExecDbQuery, &message.DbQuery{Db: db, Sql: sql})
	if err != nil {
		return nil, fmt.Errorf("exec db query on %s: %w", db, err)
	}
	if r, ok := resp.(*message.DbRows); ok {
		return r.Rows, nil
	}
	return nil, nil
}
