package config

import (
	"io/ioutil"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/operator-framework/smt-planner/pkg/planner"
)

type File struct {
	PlannerConfig Config `yaml:"planner"`
}

type Config struct {
	// Timeout bounds every solve. Zero disables the bound.
	Timeout time.Duration `yaml:"timeout"`
	// Isolate runs bounded searches in a worker process.
	Isolate bool                   `yaml:"isolate"`
	Options map[string]interface{} `yaml:"options"`
}

func LoadConfig(cfgPath string) (*Config, error) {
	f, err := os.Open(os.ExpandEnv(cfgPath))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var cfgFile File
	err = yaml.Unmarshal(d, &cfgFile)
	if err != nil {
		return nil, err
	}

	config := &cfgFile.PlannerConfig
	if config.Timeout < 0 {
		config.Timeout = 0
	}

	return config, nil
}

// PlannerOptions reads the planner options of the configuration.
func (c *Config) PlannerOptions() (planner.Options, error) {
	return planner.OptionsFromMap(c.Options)
}
