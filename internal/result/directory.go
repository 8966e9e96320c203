package result

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// TimestampLayout names report directories, e.g. 2026-10-16_142501.
const TimestampLayout = "2006-01-02_150405"

const aggregationSuffix = "_aggregation"

// InitReportDirectory allocates a fresh directory for the report under
// baseDir, named after timestamp. An existing directory of the same name is
// never reused: a numeric disambiguator is appended and incremented until
// creation succeeds. Aggregation reports get an "_aggregation" suffix. An
// unnamed report takes the formatted timestamp as its name. One subdirectory
// is created per problem.
func (r *BenchmarkResult) InitReportDirectory(baseDir string, timestamp time.Time) (string, error) {
	stamp := timestamp.Format(TimestampLayout)
	if r.Name == "" {
		r.Name = stamp
	}
	if err := ensureBaseDir(baseDir); err != nil {
		return "", err
	}

	var dir string
	for index := 0; ; index++ {
		name := stamp
		if index > 0 {
			name += "_" + strconv.Itoa(index)
		}
		if r.aggregation {
			name += aggregationSuffix
		}
		dir = filepath.Join(baseDir, name)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("creating report dir: %w", err)
		}
	}
	r.ReportDirectory = dir

	for _, p := range r.problems {
		if err := os.MkdirAll(ProblemDir(dir, p), 0o755); err != nil {
			return "", fmt.Errorf("creating problem dir: %w", err)
		}
	}
	return dir, nil
}

// ProblemDir is the subdirectory of reportDir holding the problem's files.
func ProblemDir(reportDir string, p *ProblemResult) string {
	return filepath.Join(reportDir, sanitizeName(p.name))
}

// UpdateLatestLink points baseDir/latest at reportDir.
func UpdateLatestLink(baseDir, reportDir string) error {
	abs, err := filepath.Abs(reportDir)
	if err != nil {
		return fmt.Errorf("resolving report dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(abs, latest); err != nil {
		return fmt.Errorf("creating latest symlink: %w", err)
	}
	return nil
}

func ensureBaseDir(baseDir string) error {
	info, err := os.Stat(baseDir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%w: %s", ErrBaseNotDirectory, baseDir)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return fmt.Errorf("creating benchmark dir: %w", err)
		}
	case err != nil:
		return fmt.Errorf("inspecting benchmark dir: %w", err)
	}
	if err := unix.Access(baseDir, unix.W_OK); err != nil {
		return fmt.Errorf("%w: %s", ErrBaseNotWritable, baseDir)
	}
	return nil
}

func sanitizeName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	if clean == "" || clean == "." || clean == ".." {
		return "_"
	}
	return clean
}
