package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wcferry/client"
)

func newQueryCommands(ctx *commandContext) []*cobra.Command {
	login := &cobra.Command{
		Use:   "login",
		Short: "Report whether the account is logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				ok, err := s.IsLogin(c)
				if err != nil {
					return err
				}
				return ctx.printResult(cmd, map[string]bool{"logged_in": ok}, yesNo(ok))
			})
		},
	}

	self := &cobra.Command{
		Use:   "self",
		Short: "Print the logged-in account's wxid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				wxid, err := s.SelfWxid(c)
				if err != nil {
					return err
				}
				return ctx.printResult(cmd, map[string]string{"wxid": wxid}, wxid)
			})
		},
	}

	user := &cobra.Command{
		Use:   "user",
		Short: "Show the logged-in account's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				info, err := s.UserInfo(c)
				if err != nil {
					return err
				}
				if info == nil {
					return fmt.Errorf("worker returned no profile")
				}
				rows := [][]string{
					{"wxid", info.Wxid},
					{"name", info.Name},
					{"mobile", info.Mobile},
					{"home", info.Home},
				}
				return ctx.printTable(cmd, info, []string{"Field", "Value"}, rows, nil)
			})
		},
	}

	contacts := &cobra.Command{
		Use:   "contacts",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				list, err := s.Contacts(c)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, ct := range list {
					rows = append(rows, []string{ct.Wxid, ct.Name, ct.Remark, ct.Code, genderName(ct.Gender), ct.City})
				}
				return ctx.printTable(cmd, list, []string{"Wxid", "Name", "Remark", "Code", "Gender", "City"}, rows, nil)
			})
		},
	}

	dbs := &cobra.Command{
		Use:   "dbs",
		Short: "List the worker's databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				names, err := s.DbNames(c)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(names))
				for _, n := range names {
					rows = append(rows, []string{n})
				}
				return ctx.printTable(cmd, names, []string{"Database"}, rows, nil)
			})
		},
	}

	tables := &cobra.Command{
		Use:   "tables <db>",
		Short: "List the tables of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				list, err := s.DbTables(c, args[0])
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, t := range list {
					rows = append(rows, []string{t.Name, t.Sql})
				}
				return ctx.printTable(cmd, list, []string{"Table", "SQL"}, rows, nil)
			})
		},
	}

	query := &cobra.Command{
		Use:   "query <db> <sql>",
		Short: "Run a SQL query against a database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				rows, err := s.ExecDbQuery(c, args[0], args[1])
				if err != nil {
					return err
				}
				headers, cells := rowsTable(rows)
				if len(headers) == 0 {
					headers = []string{"Result"}
				}
				return ctx.printTable(cmd, rows, headers, cells, nil)
			})
		},
	}

	msgTypes := &cobra.Command{
		Use:   "msg-types",
		Short: "List message type codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, s *client.Session) error {
				types, err := s.MsgTypes(c)
				if err != nil {
					return err
				}
				return ctx.printTable(cmd, types, []string{"Code", "Name"}, msgTypesTable(types), []columnAlignment{alignRight})
			})
		},
	}

	return []*cobra.Command{login, self, user, contacts, dbs, tables, query, msgTypes}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func parseInt32(s, what string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return int32(v), nil
}
