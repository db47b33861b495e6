package main

import (
	"fmt"

	mcpserver "github.com/felixgeelhaar/courseforge/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Serve the course commands as MCP tools so an editor or assistant can create
courses, run tests and follow progress in the workspace. The server speaks
stdio unless --http is given.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var mcpHTTPAddr string

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP at this address (e.g. localhost:8765)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.NewServer(mcpserver.Config{
		Courses: a.courses,
		Version: Version,
	})
	if mcpHTTPAddr != "" {
		a.logger.Info("mcp server starting", "workspace", a.root, "transport", "http", "addr", mcpHTTPAddr)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", mcpHTTPAddr)
		return srv.ServeHTTP(ctx, mcpHTTPAddr)
	}
	a.logger.Info("mcp server starting", "workspace", a.root, "transport", "stdio")
	return srv.ServeStdio(ctx)
}
