package main

import (
	"context"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/majowuji/wuji/internal/mcp"
)

func newMCPCommand() *cobra.Command {
	var (
		remoteURL string
		apiKey    string
		userID    int64
		timezone  string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long:  "Serves training data to MCP clients over stdio. By default it reads the\nlocal database; with --remote it proxies a running wuji server instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			var ds mcp.DataSource
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return err
			}

			if remoteURL != "" {
				ds = mcp.NewHTTPClient(remoteURL, apiKey)
			} else {
				cfg, db, err := openDatabase()
				if err != nil {
					return err
				}
				defer db.Close()
				if loc, err = cfg.Location(); err != nil {
					return err
				}
				ds = db
			}

			s := mcp.New(ds, loc, Version, log)
			return mcpserver.ServeStdio(s,
				mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
					return mcp.WithUserID(ctx, userID)
				}),
			)
		},
	}

	cmd.Flags().StringVar(&remoteURL, "remote", "", "base URL of a running wuji server (use its API instead of the local db)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for --remote")
	cmd.Flags().Int64Var(&userID, "user", 1, "user ID to scope all queries to")
	cmd.Flags().StringVar(&timezone, "timezone", "Europe/Moscow", "IANA timezone for day bucketing in --remote mode")
	return cmd
}
