package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lemonberrylabs/windstyle/pkg/ast"
	"github.com/lemonberrylabs/windstyle/pkg/lexer"
	"github.com/lemonberrylabs/windstyle/pkg/loader"
	"github.com/lemonberrylabs/windstyle/pkg/parser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// readSource reads a file, or standard input when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the tokens of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for tok := range lexer.New(src).All() {
				fmt.Fprintf(out, "%s\t%s\n", tok.Pos, tok)
			}
			return nil
		},
	}
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a source file and print its syntax tree",
		Long: "Parse a source file and print its syntax tree as JSON or YAML.\n" +
			"With --expr the argument is parsed as a single expression and\n" +
			"printed in prefix notation.",
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	cmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	cmd.Flags().BoolP("expr", "e", false, "Treat the argument as expression text")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()

	if isExpr, _ := cmd.Flags().GetBool("expr"); isExpr {
		e, err := parser.ParseExpression(args[0])
		if err != nil {
			return errors.New(parser.FormatError(err, "", args[0]))
		}
		fmt.Fprintln(out, ast.Sprint(e))
		return nil
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}
	prog, err := parser.ParseWithLimit(src, cfg.MaxSourceSize)
	if err != nil {
		return errors.New(parser.FormatError(err, args[0], src))
	}

	tree := ast.Dump(prog)
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Parse files and directories and report every error",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().Int("workers", 0, "Files parsed concurrently (default 4, env WORKERS)")
	cmd.Flags().BoolP("quiet", "q", false, "Only print failures")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	paths, err := loader.Collect(args, cfg.Extensions)
	if err != nil {
		return err
	}
	results, err := loader.Files(cmd.Context(), paths, loader.Options{
		Extensions:    cfg.Extensions,
		Workers:       cfg.Workers,
		MaxSourceSize: cfg.MaxSourceSize,
	})
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintln(cmd.ErrOrStderr(), parser.FormatError(r.Err, r.Path, r.Source))
			continue
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\n", r.Path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed to parse", failed, len(results))
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d file(s)\n", len(results))
	}
	return nil
}
