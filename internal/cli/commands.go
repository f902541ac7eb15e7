package cli

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/inputguard/pkg/guard"
	"github.com/dmitrymomot/inputguard/pkg/pattern"
)

func newPatternCmd(root *rootOptions) *cobra.Command {
	var (
		flags   string
		op      string
		replace string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "pattern PATTERN [FILE|-]",
		Short: "Run a regular expression over the input under a deadline",
		Long: `Compile PATTERN and run it over FILE (or stdin) with a hard deadline.
Matches are printed as JSON with character offsets.

  guardctl pattern '(\w+)@(\w+)\.com' mail.txt
  echo 'a1 b2' | guardctl pattern --op substitute --replace '<$0>' '\d'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pattern.ParseFlags(flags)
			if err != nil {
				return err
			}
			operation, err := pattern.ParseOperation(op)
			if err != nil {
				return err
			}

			g, limits, err := root.newGuard(cmd, func(l guard.Limits) guard.Limits {
				if timeout > 0 {
					return l.WithTimeout(timeout)
				}
				return l
			})
			if err != nil {
				return err
			}

			text, err := readInput(cmd, argOrStdin(args, 1), limits.MaxSizeBytes())
			if err != nil {
				return err
			}

			res := g.Evaluate(cmd.Context(), guard.Request{
				Kind:        guard.PatternTest,
				Pattern:     args[0],
				Flags:       f,
				Operation:   operation,
				Replacement: replace,
				Payload:     text,
			})
			if err := res.Err(); err != nil {
				return err
			}
			return printJSON(cmd, res.Output)
		},
	}

	cmd.Flags().StringVar(&flags, "flags", "", "Flag letters: i (ignore case), m (multiline), s (dot matches newline), x (verbose)")
	cmd.Flags().StringVar(&op, "op", string(pattern.OpFindAll), "Operation: findall, match, search, split or substitute")
	cmd.Flags().StringVar(&replace, "replace", "", "Replacement template for substitute ($1, ${name})")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Evaluation deadline (default: GUARD_TIMEOUT)")
	return cmd
}

func newParseCmd(root *rootOptions) *cobra.Command {
	var (
		format   string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "parse [FILE|-]",
		Short: "Parse a JSON or YAML document with size and depth limits",
		Long: `Parse FILE (or stdin) after checking its size, reject it when it is nested
deeper than the limit, and print the parsed value as JSON.

The format is taken from --format, then from the file extension, and
defaults to JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := argOrStdin(args, 0)
			if format == "" && hasExt(path, ".yaml", ".yml") {
				format = "yaml"
			}

			g, limits, err := root.newGuard(cmd, func(l guard.Limits) guard.Limits {
				if cmd.Flags().Changed("max-depth") {
					return l.WithMaxDepth(maxDepth)
				}
				return l
			})
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, path, limits.MaxSizeBytes())
			if err != nil {
				return err
			}

			res := g.Evaluate(cmd.Context(), guard.Request{
				Kind:    guard.StructuredParse,
				Payload: raw,
				Format:  format,
			})
			if err := res.Err(); err != nil {
				return err
			}
			return printJSON(cmd, res.Output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Document format: json or yaml")
	cmd.Flags().IntVar(&maxDepth, "max-depth", guard.DefaultMaxDepth, "Maximum nesting depth (default: GUARD_MAX_DEPTH)")
	return cmd
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render [FILE|-]",
		Short: "Render Markdown or clean HTML through the allowlist sanitizer",
		Long: `Print FILE (or stdin) as HTML that is safe to embed: Markdown is rendered
first, then every tag and attribute outside the allowlist is removed.

The format is taken from --format, then from the file extension (.md and
.markdown mean Markdown), and defaults to HTML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := argOrStdin(args, 0)
			if format == "" && hasExt(path, ".md", ".markdown") {
				format = guard.FormatMarkdown
			}

			g, limits, err := root.newGuard(cmd)
			if err != nil {
				return err
			}

			src, err := readInput(cmd, path, limits.MaxSizeBytes())
			if err != nil {
				return err
			}

			html, err := g.RenderMarkup(cmd.Context(), src, format)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), html)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Input format: markdown or html")
	return cmd
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE",
		Short: "Check a file the way an upload is checked",
		Long: `Validate FILE as an upload: size, extension allowlist, file name and,
unless GUARD_REQUIRE_UTF8=false, UTF-8 content. Only the base name of FILE
is checked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, limits, err := root.newGuard(cmd)
			if err != nil {
				return err
			}

			content, err := readInput(cmd, args[0], limits.MaxSizeBytes())
			if err != nil {
				return err
			}

			name := filepath.Base(args[0])
			if _, err := g.IngestFile(cmd.Context(), name, content); err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"name": name,
				"size": len(content),
			})
		},
	}
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
