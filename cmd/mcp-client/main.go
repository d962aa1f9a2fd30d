// Command mcp-client is a smoke client for a running jobscout MCP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
	)

	rootCmd := &cobra.Command{
		Use:          "mcp-client",
		Short:        "Call jobscout MCP tools from the command line",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "http://localhost:8080/mcp/stream", "streamable HTTP endpoint")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall call timeout")

	withSession := func(cmd *cobra.Command, fn func(context.Context, *mcp.ClientSession) error) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		client := mcp.NewClient(&mcp.Implementation{Name: "jobscout-mcp-client", Version: "0.1.0"}, nil)
		session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
		if err != nil {
			return fmt.Errorf("connect %s: %w", endpoint, err)
		}
		defer func() { _ = session.Close() }()
		return fn(ctx, session)
	}

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server exposes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *mcp.ClientSession) error {
				res, err := s.ListTools(ctx, nil)
				if err != nil {
					return err
				}
				for _, t := range res.Tools {
					fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", t.Name, t.Description)
				}
				return nil
			})
		},
	}

	callCmd := &cobra.Command{
		Use:   "call TOOL [JSON-ARGS]",
		Short: "Call a tool with JSON arguments",
		Example: `  mcp-client call job_search '{"keywords":"golang","location":"Berlin","max_results":10}'
  mcp-client call graph_inspect '{"view":"skills"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments := map[string]any{}
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &arguments); err != nil {
					return fmt.Errorf("arguments must be a JSON object: %w", err)
				}
			}
			return withSession(cmd, func(ctx context.Context, s *mcp.ClientSession) error {
				res, err := s.CallTool(ctx, &mcp.CallToolParams{Name: args[0], Arguments: arguments})
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), res)
			})
		},
	}

	rootCmd.AddCommand(toolsCmd, callCmd)
	return rootCmd
}

func printResult(w io.Writer, res *mcp.CallToolResult) error {
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Fprintln(w, txt.Text)
		}
	}
	if res.IsError {
		return fmt.Errorf("tool reported an error")
	}
	return nil
}
