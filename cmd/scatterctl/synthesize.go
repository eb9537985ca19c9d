package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
)

func init() {
	var advisors []string
	var input string
	synthCmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Ask the board of advisors about a challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynthesize(newClient(apiFlag, tokenFlag), advisors, input, os.Stdout)
		},
	}
	synthCmd.Flags().StringSliceVarP(&advisors, "advisor", "p", nil, "Persona ID (repeatable; defaults to the saved board)")
	synthCmd.Flags().StringVarP(&input, "input", "i", "", "Challenge text (required)")
	_ = synthCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(synthCmd)

	var demoInput string
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the rate-limited demo analyzer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(newClient(apiFlag, tokenFlag), demoInput, os.Stdout)
		},
	}
	demoCmd.Flags().StringVarP(&demoInput, "input", "i", "", "Text to analyze (required)")
	_ = demoCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(demoCmd)
}

// resolveAdvisors expands persona ids into full personas using the directory
// and the caller's custom personas. No ids means the saved board selection.
func resolveAdvisors(c *client, ids []string) ([]model.Persona, error) {
	var board model.BoardState
	if err := c.getJSON("/api/board", &board); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		if len(board.Selection) == 0 {
			return nil, fmt.Errorf("board is empty; pass --advisor")
		}
		return board.Selection, nil
	}

	var dir struct {
		Personas []model.Persona `json:"personas"`
	}
	if err := c.getJSON("/api/personas", &dir); err != nil {
		return nil, err
	}
	known := make(map[string]model.Persona, len(dir.Personas)+len(board.CustomPersonas))
	for _, p := range dir.Personas {
		known[p.ID] = p
	}
	for _, p := range board.CustomPersonas {
		known[p.ID] = p
	}

	out := make([]model.Persona, 0, len(ids))
	for _, id := range ids {
		p, ok := known[id]
		if !ok {
			return nil, fmt.Errorf("unknown persona %q", id)
		}
		out = append(out, p)
	}
	return out, nil
}

func runSynthesize(c *client, ids []string, input string, out io.Writer) error {
	if input == "" {
		return fmt.Errorf("input cannot be empty")
	}
	advisors, err := resolveAdvisors(c, ids)
	if err != nil {
		return err
	}
	data, err := c.do("POST", "/board-synthesis", map[string]interface{}{
		"advisors": advisors,
		"input":    input,
	})
	if err != nil {
		return err
	}
	return printJSON(out, data)
}

func runDemo(c *client, input string, out io.Writer) error {
	if input == "" {
		return fmt.Errorf("input cannot be empty")
	}
	data, err := c.do("POST", "/synthesize-demo", map[string]string{"input": input})
	if err != nil {
		return err
	}
	return printJSON(out, data)
}
