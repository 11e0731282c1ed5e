package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"mypl/internal/checker"
	"mypl/internal/codegen"
	"mypl/internal/lexer"
	"mypl/internal/parser"
	"mypl/internal/printer"
	"mypl/internal/token"
	"mypl/internal/vm"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cmd := args[0]
	switch cmd {
	case "run", "r":
		requireFile(args, "run")
		run(args[1])
	case "tokens", "t":
		requireFile(args, "tokens")
		showTokens(args[1])
	case "ast", "a":
		requireFile(args, "ast")
		showAST(args[1])
	case "check", "c":
		requireFile(args, "check")
		check(args[1])
	case "compile", "x":
		requireFile(args, "compile")
		compile(args[1])
	case "version", "v":
		fmt.Printf("mypl version %s\n", version)
	case "help", "h":
		printUsage()
	default:
		if strings.HasSuffix(cmd, ".mypl") {
			run(cmd)
		} else {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
			printUsage()
			os.Exit(1)
		}
	}
}

func requireFile(args []string, cmd string) {
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "error: '%s' needs an input file\n", cmd)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("mypl - a small statically-typed imperative language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  mypl run <file.mypl>      Compile and execute")
	fmt.Println("  mypl tokens <file.mypl>   Show lexer tokens")
	fmt.Println("  mypl ast <file.mypl>      Show the parsed syntax tree")
	fmt.Println("  mypl check <file.mypl>    Run the semantic checker only")
	fmt.Println("  mypl compile <file.mypl>  Show generated bytecode, one frame per function")
	fmt.Println("  mypl version              Show version")
	fmt.Println("  mypl help                 Show this help")
	fmt.Println()
	fmt.Println("Short forms: r, t, a, c, x, v, h")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  mypl run program.mypl")
	fmt.Println("  mypl program.mypl          # same as run")
}

func readFile(path string) (string, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func showTokens(path string) {
	source, err := readFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(1)
	}
	lex := lexer.New(source)
	for {
		tok, err := lex.Next()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%3d:%-3d  %s\n", tok.Line, tok.Column, tok)
		if tok.Kind == token.EOS {
			break
		}
	}
}

func showAST(path string) {
	source, err := readFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(1)
	}
	prog, err := parser.Parse(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	printer.Print(os.Stdout, prog)
}

func check(path string) {
	source, err := readFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(1)
	}
	prog, err := parser.Parse(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := checker.Check(prog); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func compile(path string) {
	source, err := readFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(1)
	}
	prog, err := parser.Parse(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := checker.Check(prog); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	templates := codegen.Generate(prog)
	for name, tmpl := range templates {
		fmt.Printf("fun %s (%d args)\n", name, tmpl.ArgCount)
		for i, instr := range tmpl.Instructions {
			fmt.Printf("  %3d  %s\n", i, instr)
		}
	}
}

func run(path string) {
	source, err := readFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(1)
	}
	prog, err := parser.Parse(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := checker.Check(prog); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	templates := codegen.Generate(prog)

	machine := vm.New(templates, os.Stdout, os.Stdin)
	if err := machine.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
