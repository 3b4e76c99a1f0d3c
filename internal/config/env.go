package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by NewViper.
const EnvPrefix = "WIKILOG"

// Keys bound by NewViper. WIKILOG_CONFIG and WIKILOG_DB in the environment.
const (
	KeyConfig   = "config"
	KeyDatabase = "db"
)

// dotenvFiles are read in order; later files override earlier ones.
var dotenvFiles = []string{".env", ".env.local"}

// NewViper returns a viper instance resolving KeyConfig and KeyDatabase.
//
// Precedence, highest first: values set on the instance (bound flags),
// process environment, .env.local in dir, .env in dir. Missing dotenv files
// are skipped.
func NewViper(fs afero.Fs, dir string) (*viper.Viper, error) {
	dot, err := readDotenv(fs, dir)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range []string{KeyConfig, KeyDatabase} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
		if val, ok := dot[envName(key)]; ok {
			v.SetDefault(key, val)
		}
	}
	return v, nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

func readDotenv(fs afero.Fs, dir string) (map[string]string, error) {
	merged := map[string]string{}
	for _, name := range dotenvFiles {
		path := filepath.Join(dir, name)
		data, err := afero.ReadFile(fs, path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		values, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		for k, val := range values {
			merged[k] = val
		}
	}
	return merged, nil
}
