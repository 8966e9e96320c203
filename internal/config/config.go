package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/signalnine/solverbench/internal/result"
	"github.com/signalnine/solverbench/internal/score"
)

// Solver drivers.
const (
	DriverExec   = "exec"
	DriverDocker = "docker"
)

// Ranking policy names, mirrored from the ranking package.
const (
	ComparatorTotalScore   = "total_score"
	ComparatorWorstScore   = "worst_score"
	WeightFactoryTotalRank = "total_rank"
)

type Config struct {
	Name                   string     `yaml:"name"`
	Solvers                []Solver   `yaml:"solvers" validate:"required,min=1,dive"`
	Problems               []Problem  `yaml:"problems" validate:"required,min=1,dive"`
	SubRunCount            int        `yaml:"sub_run_count" validate:"gte=0"`
	ParallelBenchmarkCount int        `yaml:"parallel_benchmark_count" validate:"gte=0"`
	WarmUpSeconds          int        `yaml:"warm_up_seconds" validate:"gte=0"`
	TimeoutSeconds         int        `yaml:"timeout_seconds" validate:"gte=0"`
	ScoreKind              score.Kind `yaml:"score_kind" validate:"omitempty,score_kind"`
	Ranking                Ranking    `yaml:"ranking"`
	Results                Results    `yaml:"results"`
}

type Solver struct {
	Name            string            `yaml:"name" validate:"required"`
	Driver          string            `yaml:"driver" validate:"omitempty,oneof=exec docker"`
	Command         []string          `yaml:"command"`
	Image           string            `yaml:"image"`
	Env             map[string]string `yaml:"env"`
	EnvironmentMode string            `yaml:"environment_mode" validate:"omitempty,oneof=reproducible non_reproducible fast_assert full_assert"`
}

// Mode returns the solver's environment mode, nil when unset.
func (s Solver) Mode() *result.EnvironmentMode {
	if s.EnvironmentMode == "" {
		return nil
	}
	mode := result.EnvironmentMode(s.EnvironmentMode)
	return &mode
}

type Problem struct {
	Name         string `yaml:"name" validate:"required"`
	Dataset      string `yaml:"dataset"`
	ProblemScale *int64 `yaml:"problem_scale" validate:"omitempty,gte=0"`
}

// Ranking selects how solvers are ranked. Exactly one of Comparator and
// WeightFactory may be set; with neither, total_score is used.
type Ranking struct {
	Comparator    string `yaml:"comparator" validate:"omitempty,oneof=total_score worst_score"`
	WeightFactory string `yaml:"weight_factory" validate:"omitempty,oneof=total_rank"`
}

// Policy returns the configured ranking policy name.
func (r Ranking) Policy() string {
	if r.WeightFactory != "" {
		return r.WeightFactory
	}
	return r.Comparator
}

type Results struct {
	Dir string `yaml:"dir"`
}

// WarmUp is the warm-up time budget.
func (c *Config) WarmUp() time.Duration { return time.Duration(c.WarmUpSeconds) * time.Second }

// Timeout bounds a single sub-run. Zero means no limit.
func (c *Config) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }

// ErrAmbiguousRanking is returned when both a comparator and a weight factory
// are configured.
var ErrAmbiguousRanking = errors.New("ranking: comparator and weight_factory are mutually exclusive")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("score_kind", validateScoreKind); err != nil {
		panic(fmt.Sprintf("registering score_kind validator: %v", err))
	}
	return v
}

func validateScoreKind(fl validator.FieldLevel) bool {
	switch score.Kind(fl.Field().String()) {
	case score.KindSimple, score.KindHardSoft:
		return true
	}
	return false
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := semanticValidate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// semanticValidate checks rules struct tags cannot express and fills defaults.
func semanticValidate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Solvers))
	for i := range cfg.Solvers {
		s := &cfg.Solvers[i]
		if seen[s.Name] {
			return fmt.Errorf("solver %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if s.Driver == "" {
			s.Driver = DriverExec
		}
		switch s.Driver {
		case DriverExec:
			if len(s.Command) == 0 {
				return fmt.Errorf("solver %q: command is required for the exec driver", s.Name)
			}
		case DriverDocker:
			if s.Image == "" {
				return fmt.Errorf("solver %q: image is required for the docker driver", s.Name)
			}
		}
	}
	seen = make(map[string]bool, len(cfg.Problems))
	for _, p := range cfg.Problems {
		if seen[p.Name] {
			return fmt.Errorf("problem %q: duplicate name", p.Name)
		}
		seen[p.Name] = true
	}

	if cfg.Ranking.Comparator != "" && cfg.Ranking.WeightFactory != "" {
		return ErrAmbiguousRanking
	}
	if cfg.Ranking.Comparator == "" && cfg.Ranking.WeightFactory == "" {
		cfg.Ranking.Comparator = ComparatorTotalScore
	}
	if cfg.SubRunCount == 0 {
		cfg.SubRunCount = 1
	}
	if cfg.ParallelBenchmarkCount == 0 {
		cfg.ParallelBenchmarkCount = 1
	}
	if cfg.ScoreKind == "" {
		cfg.ScoreKind = score.KindSimple
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	return nil
}
