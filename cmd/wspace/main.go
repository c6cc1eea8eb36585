package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/funvibe/wspace/internal/bytecode"
	"github.com/funvibe/wspace/internal/config"
	"github.com/funvibe/wspace/pkg/cli"
)

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func usage() {
	fmt.Print(`Usage: wspace <command> [arguments]

Commands:
  run <file>              parse and run a program (default for bare files)
  build <file> [-o out]   compile a program to a bytecode bundle
  exec <bundle>           run a previously built bundle
  disasm <file>           print the compiled bytecode of a program
  check <manifest>        run the programs of a YAML manifest
  help                    show this message
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "help", "-help", "--help", "-h":
		usage()

	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wspace run <file>")
			os.Exit(1)
		}
		if cli.RunFile(os.Args[2]) != nil {
			os.Exit(1)
		}

	case "build":
		if err := buildCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

	case "exec":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wspace exec <bundle>")
			os.Exit(1)
		}
		if err := execCommand(os.Args[2]); err != nil {
			os.Exit(1)
		}

	case "disasm":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wspace disasm <file>")
			os.Exit(1)
		}
		if err := disasmCommand(os.Args[2]); err != nil {
			os.Exit(1)
		}

	case "check":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: wspace check <manifest>")
			os.Exit(1)
		}
		manifest, err := cli.LoadManifest(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		if cli.CheckManifest(manifest, os.Stdout) != nil {
			os.Exit(1)
		}

	default:
		// Bare source file argument: run it.
		if !isSourceFile(os.Args[1]) {
			fmt.Fprintf(os.Stderr, "Unknown command '%s'\n\n", os.Args[1])
			usage()
			os.Exit(1)
		}
		if cli.RunFile(os.Args[1]) != nil {
			os.Exit(1)
		}
	}
}

func buildCommand(args []string) error {
	var inPath, outPath string
	for i := 0; i < len(args); i++ {
		if args[i] == "-o" {
			if i+1 >= len(args) {
				return fmt.Errorf("-o requires an argument")
			}
			i++
			outPath = args[i]
			continue
		}
		inPath = args[i]
	}
	if inPath == "" {
		return fmt.Errorf("usage: wspace build <file> [-o out%s]", config.BundleFileExt)
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(inPath, config.SourceFileExt) + config.BundleFileExt
	}

	source, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	program, err := cli.Compile(string(source))
	if err != nil {
		return err
	}

	data, err := bytecode.NewBundle(program, inPath).Serialize()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d instructions)\n", outPath, program.Len())
	return nil
}

func execCommand(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open '%s'\n", path)
		return err
	}

	bundle, err := bytecode.DeserializeBundle(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}

	return cli.RunBundle(bundle)
}

func disasmCommand(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open '%s'\n", path)
		return err
	}

	program, err := cli.Compile(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}

	fmt.Print(bytecode.Disassemble(program, path))
	return nil
}
