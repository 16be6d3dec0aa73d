package launch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/T4rp/blazinglyassmc/internal/config"
)

// mainClass is the game's entry point.
const mainClass = "net.minecraft.client.main.Main"

// jvmFlags are the fixed JVM tuning flags the game is launched with.
var jvmFlags = []string{
	"-Xmx2G",
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+UseG1GC",
	"-XX:G1NewSizePercent=20",
	"-XX:G1ReservePercent=20",
	"-XX:MaxGCPauseMillis=50",
	"-XX:G1HeapRegionSize=32M",
}

// LoadConfig reads the launcher profile from the instance directory.
func LoadConfig(instanceDir string) (config.Config, error) {
	return config.LoadFromFile(filepath.Join(instanceDir, "config.yaml"))
}

// BuildClasspath collects every library archive under libraries/ plus the
// client jar into a classpath string. Entries are relative to the instance
// directory, which the game process runs in, and are joined with the
// platform's path list separator.
//
// The traversal is iterative with an explicit directory stack, so deeply
// nested library trees cost heap, not call stack.
func BuildClasspath(instanceDir string) (string, error) {
	librariesDir := filepath.Join(instanceDir, "libraries")

	var entries []string
	stack := []string{librariesDir}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) && dir == librariesDir {
				break
			}
			return "", fmt.Errorf("launch: read %s: %w", dir, err)
		}

		for _, e := range dirEntries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				stack = append(stack, path)
				continue
			}

			rel, err := filepath.Rel(instanceDir, path)
			if err != nil {
				return "", fmt.Errorf("launch: relativize %s: %w", path, err)
			}
			entries = append(entries, rel)
		}
	}

	// Directory stack order is traversal-dependent; a sorted classpath is
	// stable across runs.
	sort.Strings(entries)
	entries = append(entries, "client.jar")

	return strings.Join(entries, string(os.PathListSeparator)), nil
}

// Command assembles the game launch command. The returned command runs in
// the instance directory; the caller decides when to start it.
func Command(ctx context.Context, cfg config.Config, instanceDir string) (*exec.Cmd, error) {
	classpath, err := BuildClasspath(instanceDir)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-Djava.library.path=libraries",
		"-Djna.tmpdir=libraries",
		"-Dio.netty.native.workdir=libraries",
		"-Dminecraft.launcher.brand=blazinglyassmc",
		"-Dminecraft.launcher.version=" + cfg.Version,
	}
	args = append(args, jvmFlags...)
	args = append(args,
		"-cp", classpath,
		mainClass,
		"--username", cfg.Username,
		"--version", cfg.Version,
		"--gameDir", ".",
		"--assetsDir", "assets",
		"--assetIndex", cfg.AssetIndexID,
		"--accessToken", "",
		"--versionType", "release",
	)

	cmd := exec.CommandContext(ctx, javaBinary(), args...)
	cmd.Dir = instanceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// javaBinary returns the JVM launcher for the current platform. javaw on
// Windows avoids a console window.
func javaBinary() string {
	if runtime.GOOS == "windows" {
		return "javaw"
	}
	return "java"
}
