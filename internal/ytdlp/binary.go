package ytdlp

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const (
	binaryName = "yt-dlp"
	PathEnvVar = "SUBTEXT_YTDLP_PATH"
)

var ErrNotFound = errors.New("yt-dlp is not installed or not in PATH")

// Locate resolves the yt-dlp executable: an explicitly configured path
// first, then SUBTEXT_YTDLP_PATH, then a PATH lookup.
func Locate(configured string) (string, error) {
	if p := strings.TrimSpace(configured); p != "" {
		return checkExecutable(p)
	}
	if p := strings.TrimSpace(os.Getenv(PathEnvVar)); p != "" {
		return checkExecutable(p)
	}

	found, err := exec.LookPath(binaryName + executableSuffix())
	if err != nil {
		return "", ErrNotFound
	}
	return found, nil
}

func checkExecutable(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("yt-dlp not found at %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("yt-dlp path is a directory: %s", path)
	}
	return path, nil
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
