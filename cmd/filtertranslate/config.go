package main

import (
	"errors"
	"os"
	"strings"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "FILTERTRANSLATE"
	configFileName = ".filtertranslate"
)

// loadSettings layers the optional YAML config file and FILTERTRANSLATE_*
// environment variables beneath the command's flags. Flags set on the
// command line always win.
func loadSettings(cmd *cobra.Command, cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(configFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, apperrors.Config("Failed to read config file.", err)
	}
	return v, nil
}

// applySettings copies the resolved values back into opts.
func applySettings(v *viper.Viper, opts *translateOptions) {
	opts.filter = v.GetString("filter")
	opts.sourceLang = v.GetString("source_language")
	opts.targetLang = v.GetString("target_language")
	opts.encoding = v.GetString("encoding")
	opts.project = v.GetString("project")
	opts.backend = v.GetString("backend")
	opts.model = v.GetString("model")
	opts.baseURL = v.GetString("base-url")
	opts.concurrency = v.GetInt("concurrency")
	opts.rateLimit = v.GetFloat64("rate-limit")
	opts.keepIncomplete = v.GetBool("keep-incomplete")
	opts.logFilePath = v.GetString("log-file")
	opts.allowEnv = v.GetBool("allow-env")
	opts.envOnly = v.GetBool("env-only")
	opts.debug = v.GetBool("debug")
}
