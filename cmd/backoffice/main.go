package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"crinf-backoffice/internal/logging"
)

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Offline tools for the CRINF backoffice",
	Long: `backoffice works on the same files the admin API produces:
  - edit an image with the brightness/contrast/saturation pipeline
  - export, import and inspect full-state backups
  - merge a product spreadsheet into a backup document

DATABASE_URL selects the database used by "snapshot export" and
"snapshot import".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("ENVIRONMENT"), verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (env vars take precedence)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to read config file:", err)
			os.Exit(1)
		}
	}

	viper.AutomaticEnv()
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SNAPSHOT_PREFIX", "backup_crinf")
}
