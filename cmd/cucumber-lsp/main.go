package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/lfk-cbrain/VSCucumberAutoComplete/internal/server"
)

// Version is set during the build using ldflags.
var Version = "(dev) v0.0.0"

var (
	logFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:     "cucumber-lsp",
	Short:   "Language server for cucumber feature files with case handler support",
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbosity := 1
		if debug {
			verbosity = 2
		}

		log.SetOutput(os.Stderr)
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, f))
			commonlog.Configure(verbosity, &logFile)
		} else {
			commonlog.Configure(verbosity, nil)
		}

		s, err := server.New(Version)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}
		return s.RunStdio(debug)
	},
}

func main() {
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file as well as stderr")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable protocol-level debug logging")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
