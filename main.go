package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Figliar/extension-plus-API/lookup"
	"github.com/Figliar/extension-plus-API/repl"
)

const version = "v0.1.0"

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		execFiles   = flag.String("exec", "", "Comma-separated scripts to translate in batch mode")
		tablesPath  = flag.String("tables", "", "Lookup tables replacing the built-in ones")
		interactive = flag.Bool("i", false, "Start the interactive shell")
		showTree    = flag.Bool("tree", false, "Print the syntax tree before the blocks")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("luablocks %s - Lua to blocks translator\n", version)
		if *verbose {
			fmt.Println("Build: development")
			fmt.Printf("Go Version: %s\n", runtime.Version())
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := LoadConfig(findConfig(*configPath))
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *tablesPath != "" {
		cfg.Lookup.Path = *tablesPath
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	tables, err := cfg.Tables()
	if err != nil {
		fmt.Printf("Error loading lookup tables: %v\n", err)
		os.Exit(1)
	}

	files := flag.Args()
	if *execFiles != "" {
		files = append(splitList(*execFiles), files...)
	}

	if len(files) > 0 && !*interactive {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err := BatchMode(ctx, cfg, files, BatchOptions{
			Tables:   tables,
			Logger:   logger,
			ShowTree: *showTree,
			Verbose:  *verbose,
		}, os.Stdout)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			logger.Close()
			os.Exit(1)
		}
		return
	}

	shell, err := repl.NewREPLWithConfig(repl.REPLConfig{
		Tables:      tables,
		Options:     cfg.SessionOptions(logger),
		Logger:      logger,
		Prompt:      cfg.REPL.Prompt,
		HistoryFile: expandHome(cfg.REPL.HistoryFile),
		HistorySize: cfg.REPL.HistorySize,
		ShowWelcome: cfg.REPL.ShowWelcome,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		for _, line := range strings.Split(string(src), "\n") {
			shell.Feed(line)
		}
	}
	if err := shell.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// findConfig resolves the configuration path: the flag, then
// LUABLOCKS_CONFIG, then the default locations
func findConfig(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if env := os.Getenv("LUABLOCKS_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	for _, path := range []string{
		filepath.Join(home, ".luablocks", "config.yaml"),
		"./luablocks.yaml",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// printHelp displays help information
func printHelp() {
	fmt.Println("luablocks - Lua to blocks translator")
	fmt.Println()
	fmt.Println("Usage: luablocks [options] [script.lua ...]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config <path>           Path to configuration file")
	fmt.Println("  --exec <file>[,<file>]    Translate scripts in batch mode")
	fmt.Println("  --tables <path>           Lookup tables replacing the built-in ones")
	fmt.Println("  -i                        Start the interactive shell, loading any scripts first")
	fmt.Println("  --tree                    Print the syntax tree before the blocks")
	fmt.Println("  --verbose                 Enable verbose output")
	fmt.Println("  --version                 Show version information")
	fmt.Println("  --help                    Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  LUABLOCKS_CONFIG          Path to configuration file")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  luablocks                         Start the interactive shell")
	fmt.Println("  luablocks main.lua conf.lua       Translate two scripts")
	fmt.Println("  luablocks --tree main.lua         Show the syntax tree and the blocks")
	fmt.Println("  luablocks -i main.lua             Load a script and keep translating")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  Configuration files are searched in the following order:")
	fmt.Println("  1. Path specified by --config flag")
	fmt.Println("  2. Path specified by LUABLOCKS_CONFIG environment variable")
	fmt.Println("  3. Default locations: ~/.luablocks/config.yaml, ./luablocks.yaml")
	fmt.Printf("  Built-in lookup tables know %d names.\n", len(lookup.Default().Names()))
}
