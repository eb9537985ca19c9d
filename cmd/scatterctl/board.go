package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	boardCmd := &cobra.Command{Use: "board", Short: "Board operations"}

	// get
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoardGet(newClient(apiFlag, tokenFlag), os.Stdout)
		},
	}
	boardCmd.AddCommand(getCmd)

	// set
	setCmd := &cobra.Command{
		Use:   "set PERSONA_ID...",
		Short: "Replace the board selection",
		Args:  cobra.MaximumNArgs(8),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoardSet(newClient(apiFlag, tokenFlag), args, os.Stdout)
		},
	}
	boardCmd.AddCommand(setCmd)

	rootCmd.AddCommand(boardCmd)
}

func runBoardGet(c *client, out io.Writer) error {
	data, err := c.do("GET", "/api/board", nil)
	if err != nil {
		return err
	}
	return printJSON(out, data)
}

func runBoardSet(c *client, ids []string, out io.Writer) error {
	if ids == nil {
		ids = []string{}
	}
	if _, err := c.do("PUT", "/api/board?sync=true", map[string]interface{}{"advisorIds": ids}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "board saved (%d advisors)\n", len(ids))
	return nil
}
