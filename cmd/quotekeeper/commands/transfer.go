package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as a JSON document",
		Long:  `Write every quote as an indented JSON array of {"text","category"} objects, to stdout or --out.`,
		Example: `  quotekeeper export --out quotes.json
  quotekeeper export > backup.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(s *session) error {
				if out == "" {
					return s.store.ExportDocument(cmd.OutOrStdout())
				}

				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}

				if err := s.store.ExportDocument(f); err != nil {
					_ = f.Close()
					return err
				}

				if err := f.Close(); err != nil {
					return fmt.Errorf("closing %s: %w", out, err)
				}

				_, err = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d quotes to %s\n", s.store.Len(), out)

				return err
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append the quotes of a JSON document",
		Long: `Append every quote of a JSON array document to the collection, without
de-duplication. "-" reads stdin. A document that is not a quote array is
rejected and the collection is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()

			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer f.Close()

				in = f
			}

			return withSession(cmd, opts, func(s *session) error {
				n, err := s.store.ImportDocument(cmd.Context(), in)
				if err != nil {
					return err
				}

				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), map[string]int{"imported": n, "total": s.store.Len()})
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d quotes (%d total)\n", n, s.store.Len())

				return err
			})
		},
	}
}
