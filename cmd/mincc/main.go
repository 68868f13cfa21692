package main

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/minc-lang/mincc/pkg/ast"
	"github.com/minc-lang/mincc/pkg/codegen"
	"github.com/minc-lang/mincc/pkg/lexer"
	"github.com/minc-lang/mincc/pkg/parser"
)

var version = "0.1.0"

// Debug flags for dumping intermediate results
var (
	dTokens bool
	dParse  bool
	output  string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Normalize CompCert-style single-dash flags to double-dash for pflag compatibility
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that accept single-dash style
var debugFlagNames = []string{"dtokens", "dparse"}

// normalizeFlags converts single-dash flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	return lo.Map(args, func(arg string, _ int) string {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				return "--" + flagName
			}
		}
		return arg
	})
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mincc [file]",
		Short: "mincc compiles MinC source to AArch64 assembly",
		Long: `mincc is a compiler for MinC, a small C-like language with
64-bit signed integers as its only value type. It emits AArch64
assembly for a GNU-assembler-compatible toolchain.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			filename := args[0]

			if dTokens {
				return doTokens(filename, out, errOut)
			}
			if dParse {
				return doParse(filename, out, errOut)
			}
			return doCompile(filename, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dTokens, "dtokens", false, "Dump the token stream")
	rootCmd.Flags().BoolVar(&dParse, "dparse", false, "Dump the AST after parsing")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Write assembly to file instead of stdout")

	return rootCmd
}

// readSource reads the input file, or stdin when the argument is "-".
func readSource(filename string, errOut io.Writer) (string, error) {
	var content []byte
	var err error
	if filename == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(filename)
	}
	if err != nil {
		fmt.Fprintf(errOut, "mincc: error reading %s: %v\n", filename, err)
		return "", err
	}
	return string(content), nil
}

// parseFile reads and parses a MinC file, returning the AST
func parseFile(filename string, errOut io.Writer) (*ast.Program, error) {
	content, err := readSource(filename, errOut)
	if err != nil {
		return nil, err
	}

	l := lexer.New(content)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			fmt.Fprintf(errOut, "%s: %s\n", filename, e)
		}
		return nil, fmt.Errorf("parsing failed with %d errors", len(p.Errors()))
	}
	return program, nil
}

// doTokens lexes the file and dumps the token stream
func doTokens(filename string, out, errOut io.Writer) error {
	content, err := readSource(filename, errOut)
	if err != nil {
		return err
	}

	l := lexer.New(content)
	for tok := l.NextToken(); tok.Type != lexer.TokenEOF; tok = l.NextToken() {
		fmt.Fprintf(out, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Type, tok.Literal)
	}
	return nil
}

// doParse parses the file and dumps the AST
func doParse(filename string, out, errOut io.Writer) error {
	program, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}
	ast.NewPrinter(out).PrintProgram(program)
	return nil
}

// doCompile translates the file to assembly
func doCompile(filename string, out, errOut io.Writer) error {
	program, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}

	text, err := codegen.Translate(program)
	if err != nil {
		fmt.Fprintf(errOut, "mincc: %v\n", err)
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			fmt.Fprintf(errOut, "mincc: error writing %s: %v\n", output, err)
			return err
		}
		return nil
	}
	fmt.Fprint(out, text)
	return nil
}
