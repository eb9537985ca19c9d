package main

import (
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var category string
	personasCmd := &cobra.Command{
		Use:   "personas",
		Short: "List the persona directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersonas(newClient(apiFlag, tokenFlag), category, os.Stdout)
		},
	}
	personasCmd.Flags().StringVarP(&category, "category", "c", "", "Filter by category")
	rootCmd.AddCommand(personasCmd)
}

func runPersonas(c *client, category string, out io.Writer) error {
	path := "/api/personas"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	data, err := c.do("GET", path, nil)
	if err != nil {
		return err
	}
	return printJSON(out, data)
}
