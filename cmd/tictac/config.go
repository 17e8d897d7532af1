package main

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Name     string `yaml:"name" env:"TICTAC_NAME" env-default:"tictac"`
	LogLevel string `yaml:"log-level" env:"TICTAC_LOG_LEVEL" env-default:"info"`

	Learner  string `yaml:"learner" env:"TICTAC_LEARNER" env-default:"tabular"`
	Opponent string `yaml:"opponent" env:"TICTAC_OPPONENT" env-default:"random"`
	Seed     int64  `yaml:"seed" env:"TICTAC_SEED" env-default:"0"`

	BatchSize     int `yaml:"batch-size" env-default:"1000"`
	TrainEpisodes int `yaml:"train-episodes" env:"TICTAC_TRAIN" env-default:"10000"`
	EvalEpisodes  int `yaml:"eval-episodes" env:"TICTAC_EVAL" env-default:"500"`

	Output Output `yaml:"output"`
	Redis  Redis  `yaml:"redis"`
}

// Output lists the optional files written at the end of a run. Empty paths are skipped.
type Output struct {
	StatsCSV string `yaml:"stats-csv" env-default:""`
	GIF      string `yaml:"gif" env-default:""`
	GIFEvery int    `yaml:"gif-every" env-default:"1000"`
	Dot      string `yaml:"dot" env-default:""`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"TICTAC_REDIS" env-default:"false"`
	Host    string `yaml:"host" env-default:"localhost"`
	Port    string `yaml:"port" env-default:"6379"`
	Key     string `yaml:"key" env-default:"tictac:batches"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) Addr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
