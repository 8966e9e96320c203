package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/solverbench/internal/config"
)

func TestFilterSolvers(t *testing.T) {
	solvers := []config.Solver{
		{Name: "tabu", Command: []string{"./tabu"}},
		{Name: "tabu-long", Command: []string{"./tabu", "--long"}},
		{Name: "annealing", Image: "solvers/sa:1"},
	}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{"empty filter returns all", "", []string{"tabu", "tabu-long", "annealing"}},
		{"exact match", "tabu", []string{"tabu"}},
		{"prefix wildcard", "tabu*", []string{"tabu", "tabu-long"}},
		{"no match", "genetic", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, s := range filterSolvers(solvers, tt.filter) {
				got = append(got, s.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterProblems(t *testing.T) {
	problems := []config.Problem{
		{Name: "small", Dataset: "data/vrp-32.json"},
		{Name: "medium", Dataset: "data/vrp-200.json"},
		{Name: "large", Dataset: "data/cvrp-1000.json"},
	}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{"empty filter returns all", "", []string{"small", "medium", "large"}},
		{"by name", "medium", []string{"medium"}},
		{"by dataset file name", "cvrp-1000.json", []string{"large"}},
		{"by dataset prefix", "vrp-*", []string{"small", "medium"}},
		{"no match", "huge", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range filterProblems(problems, tt.filter) {
				got = append(got, p.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		pattern string
		want    bool
	}{
		{"exact match", "tabu", "tabu", true},
		{"exact mismatch", "tabu", "tabu-long", false},
		{"wildcard match", "tabu-long", "tabu*", true},
		{"wildcard mismatch", "annealing", "tabu*", false},
		{"bare wildcard", "anything", "*", true},
		{"empty value and pattern", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchName(tt.value, tt.pattern))
		})
	}
}
