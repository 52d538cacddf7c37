package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const PathEnvVar = "SUBTEXT_FFMPEG_PATH"

var ErrNotFound = errors.New("ffmpeg is not installed or not in PATH")

// Locate resolves the ffmpeg executable: configured path, then
// SUBTEXT_FFMPEG_PATH, then PATH.
func Locate(configured string) (string, error) {
	if p := strings.TrimSpace(configured); p != "" {
		return checkBinary(p)
	}
	if p := strings.TrimSpace(os.Getenv(PathEnvVar)); p != "" {
		return checkBinary(p)
	}

	found, err := exec.LookPath("ffmpeg" + executableSuffix())
	if err != nil {
		return "", ErrNotFound
	}
	return found, nil
}

func checkBinary(path string) (string, error) {
	if !fileExists(path) {
		return "", fmt.Errorf("ffmpeg binary not found at %s", path)
	}
	return path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
