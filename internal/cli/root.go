// Package cli implements the magicword-admin commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/decker502/magicword/pkg/game"
	"github.com/decker502/magicword/pkg/journal"
)

var (
	dataDir     string
	journalPath string
	formatFlag  string
	verboseFlag bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "magicword-admin",
	Short:         "Manage players and the round journal of the magic word game",
	Long:          "Administrative tool for therapists: inspect and edit the player database, and query the round journal.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if formatFlag != "json" && formatFlag != "text" {
			return fmt.Errorf("unknown format %q (want json or text)", formatFlag)
		}
		if verboseFlag {
			log.SetOutput(cmd.ErrOrStderr())
		} else {
			log.SetOutput(io.Discard)
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory (default: $MAGICWORD_DATA or ~/.magicword)")
	RootCmd.PersistentFlags().StringVarP(&journalPath, "journal", "j", "", "Journal database path (default: <data-dir>/journal.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print diagnostic logs to stderr")
}

func getDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if env := os.Getenv("MAGICWORD_DATA"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".magicword")
}

func getJournalPath() string {
	if journalPath != "" {
		return journalPath
	}
	return filepath.Join(getDataDir(), journal.DefaultFileName)
}

func openStore() (*game.UserStore, error) {
	return game.NewUserStore(getDataDir())
}

// openJournal opens an existing journal; it never creates one.
func openJournal() (*journal.Journal, error) {
	path := getJournalPath()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("journal %s: %w", path, fs.ErrNotExist)
		}
		return nil, err
	}
	return journal.Open(path)
}

func textFormat() bool {
	return formatFlag == "text"
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
