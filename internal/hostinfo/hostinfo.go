// Package hostinfo describes the machine a benchmark runs on.
package hostinfo

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/signalnine/solverbench/internal/result"
)

// Collect gathers the host environment. Fields the host cannot report stay
// nil.
func Collect(ctx context.Context, logLevel string) result.Environment {
	env := result.Environment{
		AvailableProcessors: ptr(runtime.NumCPU()),
		GoVersion:           ptr(runtime.Version()),
	}
	if logLevel != "" {
		env.LogLevel = ptr(logLevel)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		env.Version = ptr(info.Main.Version)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		env.MaxMemory = ptr(int64(vm.Total))
	} else {
		slog.Debug("reading memory info", "error", err)
	}
	if h, err := host.InfoWithContext(ctx); err == nil {
		env.OperatingSystem = ptr(describeOS(h))
	} else {
		slog.Debug("reading host info", "error", err)
	}
	return env
}

func describeOS(h *host.InfoStat) string {
	name := h.Platform
	if name == "" {
		name = h.OS
	}
	if h.PlatformVersion != "" {
		name += " " + h.PlatformVersion
	}
	return fmt.Sprintf("%s (%s, kernel %s)", name, h.KernelArch, h.KernelVersion)
}

func ptr[T any](v T) *T { return &v }
