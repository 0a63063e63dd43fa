// Copyright © 2020 Dmitry Mozzherin <dmozzherin@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	gncurator "github.com/gnames/gncurator/pkg"
	"github.com/gnames/gncurator/pkg/config"
	"github.com/gnames/gnsys"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed gncurator.yaml
var configText string

var (
	opts []config.Option
)

type cfgData struct {
	CacheDir    string
	OutputDir   string
	CounterType string
	Prefix      string
	WorkersNum  int
	Separator   string
	StoreType   string
	Upload      bool
	PgHost      string
	PgUser      string
	PgPass      string
	PgDB        string
	SparqlURL   string
	Retries     int
	Timeout     time.Duration
	Rate        float64
	StopFile    string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gncurator",
	Short: "Curates bibliographic metadata and assigns permanent identifiers",
	Long: `gncurator takes CSV batches of bibliographic records, finds the
resources and agents they describe among each other and in a store of
already curated data, and writes the batches back with permanent
identifiers, index tables and a provenance log.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		setLogger(debug)
	},
	Run: func(cmd *cobra.Command, args []string) {
		version, err := cmd.Flags().GetBool("version")
		if err != nil {
			slog.Error("Cannot get flag", "error", err)
			os.Exit(1)
		}
		if version {
			fmt.Printf("\nversion: %s\nbuild: %s\n\n", gncurator.Version, gncurator.Build)
			os.Exit(0)
		}

		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().BoolP("version", "V", false, "Returns version and build date")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Sets logging to debug level")
}

func setLogger(debug bool) {
	lvl := slog.LevelInfo
	if debug {
		lvl = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	})
	slog.SetDefault(slog.New(handler))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configFile := "gncurator"
	_ = godotenv.Load()

	cfgDir := xdg.ConfigHome
	viper.AddConfigPath(cfgDir)
	viper.SetConfigName(configFile)
	viper.SetEnvPrefix("GNCURATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, k := range []string{"PgPass", "PgUser", "PgHost", "PgDB", "SparqlURL"} {
		_ = viper.BindEnv(k)
	}

	configPath := filepath.Join(cfgDir, fmt.Sprintf("%s.yaml", configFile))
	touchConfigFile(configPath)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		slog.Error("Config file gncurator.yaml not found", "error", err)
		os.Exit(1)
	}
	getOpts()
}

// getOpts imports data from the configuration file. Some of the settings can
// be overriden by command line flags.
func getOpts() []config.Option {
	cfg := cfgData{}
	err := viper.Unmarshal(&cfg)
	if err != nil {
		slog.Error("Cannot unmarshal config file", "error", err)
	}

	if cfg.CacheDir != "" {
		opts = append(opts, config.OptCacheDir(cfg.CacheDir))
	}
	if cfg.OutputDir != "" {
		opts = append(opts, config.OptOutputDir(cfg.OutputDir))
	}
	if cfg.CounterType != "" {
		opts = append(opts, config.OptCounterType(config.CounterType(cfg.CounterType)))
	}
	if cfg.Prefix != "" {
		opts = append(opts, config.OptPrefix(cfg.Prefix))
	}
	if cfg.WorkersNum != 0 {
		opts = append(opts, config.OptWorkersNum(cfg.WorkersNum))
	}
	if cfg.Separator != "" {
		opts = append(opts, config.OptSeparator(cfg.Separator))
	}
	if cfg.StoreType != "" {
		opts = append(opts, config.OptStoreType(config.StoreType(cfg.StoreType)))
	}
	if cfg.Upload {
		opts = append(opts, config.OptUpload(true))
	}
	if cfg.PgHost != "" {
		opts = append(opts, config.OptPgHost(cfg.PgHost))
	}
	if cfg.PgUser != "" {
		opts = append(opts, config.OptPgUser(cfg.PgUser))
	}
	if cfg.PgPass != "" {
		opts = append(opts, config.OptPgPass(cfg.PgPass))
	}
	if cfg.PgDB != "" {
		opts = append(opts, config.OptPgDB(cfg.PgDB))
	}
	if cfg.SparqlURL != "" {
		opts = append(opts, config.OptSparqlURL(cfg.SparqlURL))
	}
	if cfg.Retries != 0 {
		opts = append(opts, config.OptRetries(cfg.Retries))
	}
	if cfg.Timeout != 0 {
		opts = append(opts, config.OptTimeout(cfg.Timeout))
	}
	if cfg.Rate != 0 {
		opts = append(opts, config.OptRate(cfg.Rate))
	}
	if cfg.StopFile != "" {
		opts = append(opts, config.OptStopFile(cfg.StopFile))
	}
	return opts
}

// touchConfigFile checks if config file exists, and if not, it gets created.
func touchConfigFile(configPath string) {
	fileExists, _ := gnsys.FileExists(configPath)
	if fileExists {
		return
	}

	slog.Info("Creating config file", "path", configPath)
	createConfig(configPath)
}

// createConfig creates config file.
func createConfig(path string) {
	err := gnsys.MakeDir(filepath.Dir(path))
	if err != nil {
		slog.Error("Cannot create config dir", "error", err)
		os.Exit(1)
	}

	err = os.WriteFile(path, []byte(configText), 0644)
	if err != nil {
		slog.Error("Cannot write to config file", "error", err)
		os.Exit(1)
	}
}
