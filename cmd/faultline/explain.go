package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/faultline/internal/errors"
)

func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe a faultline error code",
		Long: `Describe a faultline error code.

Without an argument every registered code is listed.

Examples:
  faultline explain
  faultline explain F202`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, code := range errors.Codes() {
					t, _ := errors.Lookup(code)
					fmt.Fprintf(out, "  %s  %-8s %s\n", code, t.Category, t.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			t, ok := errors.Lookup(code)
			if !ok {
				return errors.New("F303").WithDetail(fmt.Sprintf("%q is not a registered code", args[0]))
			}
			fmt.Fprintf(out, "%s: %s\n\n", code, t.Message)
			info(out, "Category: %s", t.Category)
			if t.Detail != "" {
				info(out, "%s", t.Detail)
			}
			info(out, "Docs:     %s", t.DocURL)
			return nil
		},
	}
	return cmd
}
