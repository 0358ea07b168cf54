// Package config holds the layered run configuration: flags override
// environment variables, which override the config file and defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/spf13/viper"

	"funcmatch/internal/dump"
	"funcmatch/internal/image"
	"funcmatch/internal/report"
)

// Config represents configuration for the funcmatch tool
type Config struct {
	Base      string   `mapstructure:"base" json:"base" jsonschema:"title=Base Address,description=Load address of the reference image or auto to map through ELF segments,default=0x1D1C85C"`
	DumpTool  string   `mapstructure:"dump_tool" json:"dump_tool" jsonschema:"title=Dump Tool,description=Path or name of the object dump executable,default=gdump"`
	DumpFlags []string `mapstructure:"dump_flags" json:"dump_flags" jsonschema:"title=Dump Flags,description=Arguments passed to the dump tool before the object path"`
	Match     string   `mapstructure:"match" json:"match" jsonschema:"title=Symbol Matching,enum=strict,enum=suffix,default=strict"`
	Strict    bool     `mapstructure:"strict" json:"strict" jsonschema:"title=Strict,description=Treat relocation differences as mismatches"`
	Format    string   `mapstructure:"format" json:"format" jsonschema:"title=Output Format,enum=text,enum=json,enum=markdown,default=text"`
	Debug     bool     `mapstructure:"debug" json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
	LogFile   string   `mapstructure:"log_file" json:"log_file" jsonschema:"title=Log File,description=Also write JSON logs to this file"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base", fmt.Sprintf("%#x", image.DefaultBase))
	v.SetDefault("dump_tool", dump.DefaultToolPath)
	v.SetDefault("dump_flags", dump.DefaultFlags)
	v.SetDefault("match", dump.MatchStrict.String())
	v.SetDefault("strict", false)
	v.SetDefault("format", "text")
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")
}

// Load reads the config file (cfgFile, or funcmatch.yaml in the working
// directory, or .funcmatch.yaml in the home directory) and the
// FUNCMATCH_* environment into v and decodes the result.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile == "" {
		cfgFile = findConfigFile()
	}

	v.SetEnvPrefix("FUNCMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns ./funcmatch.yaml or ~/.funcmatch.yaml, whichever
// exists first, or "".
func findConfigFile() string {
	candidates := []string{"funcmatch.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".funcmatch.yaml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate checks the values that are parsed later in the run.
func (c *Config) Validate() error {
	if _, err := c.BaseAddress(); err != nil {
		return err
	}
	if _, err := c.MatchMode(); err != nil {
		return err
	}
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	c.Format = string(format)
	return nil
}

func (c *Config) BaseAddress() (image.Base, error) {
	return image.ParseBase(c.Base)
}

func (c *Config) MatchMode() (dump.MatchMode, error) {
	return dump.ParseMatchMode(c.Match)
}

// Schema renders the JSON schema of the config file.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
