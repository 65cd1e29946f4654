package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	jexltostring "github.com/chetbox/jexl-to-string"
	"github.com/chetbox/jexl-to-string/pkg/grammar"
	"github.com/chetbox/jexl-to-string/pkg/watch"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	grammarFile string
	verbose     bool
}

// logger returns a text logger on stderr, at debug level when verbose.
func (f *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// grammar loads the grammar file, or returns the default grammar.
func (f *globalFlags) grammar() (*grammar.Grammar, error) {
	if f.grammarFile == "" {
		return grammar.Default(), nil
	}
	return grammar.LoadFile(f.grammarFile)
}

// formatter builds a caching formatter for the configured grammar.
func (f *globalFlags) formatter(cmd *cobra.Command) (*jexltostring.Formatter, error) {
	g, err := f.grammar()
	if err != nil {
		return nil, err
	}
	return jexltostring.New(
		jexltostring.WithGrammar(g),
		jexltostring.WithLogger(f.logger(cmd)),
		jexltostring.WithCaching(true),
	), nil
}

func newRootCmd() *cobra.Command {
	var (
		flags globalFlags
		check bool
	)

	cmd := &cobra.Command{
		Use:   "jexlfmt [expression...]",
		Short: "jexlfmt - canonical formatter for JEXL expressions",
		Long: `jexlfmt parses JEXL expressions and prints them back in canonical form:
  - single spaces around binary operators
  - double-quoted strings and shortest numbers
  - dot syntax wherever a key allows it
  - only the parentheses the expression's grouping needs

Expressions are read from the arguments, or one per line from stdin when
there are none. On stdin, blank lines and lines starting with # are copied
through unchanged.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.formatter(cmd)
			if err != nil {
				return err
			}
			if check {
				return runCheck(cmd, f, args)
			}
			return runFormat(cmd, f, args)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.grammarFile, "grammar", "g", "", "YAML grammar file (default: JEXL grammar)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().BoolVar(&check, "check", false, "list expressions that are not canonically formatted and exit non-zero")

	cmd.AddCommand(
		newWatchCmd(&flags),
		newGrammarCmd(&flags),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFormat(cmd *cobra.Command, f *jexltostring.Formatter, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		lines, ferr := watch.FormatSource(f, string(data))
		text := strings.Join(lines, "\n")
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		if _, err := io.WriteString(out, text); err != nil {
			return err
		}
		return ferr
	}

	results, err := f.FormatAll(args)
	for _, s := range results {
		// Only failed expressions have an empty result.
		if s != "" {
			fmt.Fprintln(out, s)
		}
	}
	return err
}

func runCheck(cmd *cobra.Command, f *jexltostring.Formatter, args []string) error {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		args = expressions(string(data))
	}

	var errs []error
	unformatted := 0
	for _, src := range args {
		canonical, _, err := f.Check(src)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", src, err))
			continue
		}
		if !canonical {
			unformatted++
			fmt.Fprintln(cmd.OutOrStdout(), src)
		}
	}

	if unformatted > 0 {
		errs = append(errs, fmt.Errorf("%d of %d expressions are not canonically formatted", unformatted, len(args)))
	}
	return errors.Join(errs...)
}

// expressions returns the lines of src that hold an expression.
func expressions(src string) []string {
	var out []string
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, strings.TrimRight(line, "\r"))
	}
	return out
}
