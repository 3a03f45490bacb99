package cmd

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	exsave "github.com/goliatone/go-exsave"
	"github.com/goliatone/go-exsave/internal/config"
	"github.com/goliatone/go-exsave/pkg/storage"
	"github.com/spf13/cobra"
)

var cfg config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "exsave",
	Short: "Inspect and edit exsave side-files",
	Long: `exsave reads and writes the XML side-files that carry plugin settings
next to host save slots and presets. Settings come from EXSAVE_* environment
variables, optionally preloaded from the dotenv file named by EXSAVE_DOTENV.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		log.SetHandler(text.New(os.Stderr))
		log.SetLevel(cfg.Level())
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newManager() *exsave.Manager {
	return exsave.New(
		exsave.WithStore(storage.NewFileStore(nil)),
		exsave.WithLogger(exsave.NewApexLogger(log.Log)),
		exsave.WithSideFileSuffix(cfg.Suffix),
	)
}

func init() {
	rootCmd.AddCommand(dumpCmd, getCmd, setCmd, rmCmd, cleanupCmd, presetCmd)
}
