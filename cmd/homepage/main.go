package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "homepage",
	Short: "A bilingual markdown personal site",
	Long: `homepage serves a personal site whose pages, projects and blog posts are
markdown files in English and Spanish.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the homepage version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("homepage %s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./homepage.yaml)")
	rootCmd.PersistentFlags().String("content-dir", "site", "directory holding content/ and images/")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	_ = v.BindPFlag("content_dir", rootCmd.PersistentFlags().Lookup("content-dir"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, discoverCmd, versionCmd)
}

// initializeConfig loads .env, then the config file, then HOMEPAGE_*
// environment variables. Flags win over all of them.
func initializeConfig(_ *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	v.SetDefault("addr", ":3000")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("database_path", "data/homepage.db")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("session_idle_timeout", "30m")
	v.SetDefault("watch", false)
	v.SetDefault("discover_lists", false)
	v.SetDefault("negotiate_language", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("homepage")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("HOMEPAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
