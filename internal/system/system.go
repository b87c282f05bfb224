// Package system holds host-facing helpers: resource limits, encoder
// detection, worker sizing and input discovery.
package system

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// InitResourceLimits raises the open file limit for PNG sinks and ffmpeg
// pipes.
func InitResourceLimits(logger *zap.Logger) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("get open file limit", zap.Error(err))
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("set open file limit", zap.Error(err))
		return
	}
	logger.Debug("open file limit raised", zap.Uint64("limit", uint64(rLimit.Cur)))
}

// ProjectExtensions are the project file types FindLatestProject considers.
var ProjectExtensions = []string{".yaml", ".yml", ".json"}

// FindLatestProject returns the most recently modified project file in dir.
func FindLatestProject(dir string) (string, error) {
	return findLatest(dir, ProjectExtensions)
}

func findLatest(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		match := false
		for _, ext := range extensions {
			if strings.EqualFold(filepath.Ext(f.Name()), ext) {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files in %s", strings.Join(extensions, "/"), dir)
	}
	return latestFile, nil
}

// hardwareEncoders lists accelerated encoders per codec in priority order:
// VideoToolbox on macOS, then NVENC.
var hardwareEncoders = map[string][]string{
	"h264": {"h264_videotoolbox", "h264_nvenc"},
	"h265": {"hevc_videotoolbox", "hevc_nvenc"},
}

// SoftwareEncoder is the ffmpeg encoder used when no hardware one is
// available.
func SoftwareEncoder(codec string) string {
	switch codec {
	case "h265":
		return "libx265"
	case "vp9":
		return "libvpx-vp9"
	default:
		return "libx264"
	}
}

// BestEncoder picks the first hardware encoder ffmpeg reports for codec,
// falling back to the software one.
func BestEncoder(ctx context.Context, codec string) string {
	candidates := hardwareEncoders[codec]
	if len(candidates) == 0 {
		return SoftwareEncoder(codec)
	}
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return SoftwareEncoder(codec)
	}
	return pickEncoder(string(out), codec)
}

func pickEncoder(listing, codec string) string {
	for _, enc := range hardwareEncoders[codec] {
		if strings.Contains(listing, enc) {
			return enc
		}
	}
	return SoftwareEncoder(codec)
}

// memoryShare is the fraction of available memory render buffers may use.
const memoryShare = 0.5

// RecommendWorkers caps requested by logical CPUs and by how many in-flight
// frames of frameBytes fit in available memory. Each worker holds about
// three frames. The result is at least 1.
func RecommendWorkers(requested int, frameBytes int64) int {
	cpus, err := cpu.Counts(true)
	if err != nil || cpus < 1 {
		cpus = runtime.NumCPU()
	}
	n := requested
	if n <= 0 || n > cpus {
		n = cpus
	}
	if vm, err := mem.VirtualMemory(); err == nil && frameBytes > 0 {
		perWorker := uint64(frameBytes) * 3
		if budget := int(float64(vm.Available) * memoryShare / float64(perWorker)); budget < n {
			n = budget
		}
	}
	return max(n, 1)
}
