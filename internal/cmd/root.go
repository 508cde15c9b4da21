package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "signalglobe",
	Short: "Decorative globe and noise field animations",
	Long: `signalglobe renders three decorative animations: a rotating wireframe globe
with spike markers, the same globe with point markers, and a fullscreen
gradient noise field.

Frames can be written to disk, streamed to a browser, or shown in a window.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().Int64("seed", 1337, "Seed for marker placement and seeded noise sources")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	if err := viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}

	setFieldDefaults()
	setGlobeDefaults()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("SIGNALGLOBE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// mustBind binds a flag of cmd to a viper key.
func mustBind(cmd *cobra.Command, key, name string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
	}
}
