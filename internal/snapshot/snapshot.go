// Package snapshot manages backups of the devcontainer configuration
// directory. Commands that rewrite configuration (migrate, render
// --write) snapshot first so a bad rewrite can be rolled back.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/cabindev/cabin/internal/fileutil"
)

const (
	// Prefix is the prefix for snapshot directory names.
	Prefix = "snapshot-"

	// DateFormat includes nanoseconds to prevent same-second
	// collisions.
	DateFormat = "20060102-150405.000000000"

	// MaxSnapshots is the maximum number of snapshots to retain.
	MaxSnapshots = 20

	// MinFreeDiskBytes is the free space headroom required beyond the
	// snapshot itself (100MB).
	MinFreeDiskBytes = 100 * 1024 * 1024
)

// Info holds metadata about a snapshot.
type Info struct {
	Name      string
	Path      string
	Created   time.Time
	FileCount int
}

// Create snapshots configDir into snapshotsDir and returns the
// snapshot name, or an empty string if there was nothing to snapshot.
func Create(snapshotsDir, configDir string) (string, error) {
	if !fileutil.DirHasContent(configDir) {
		return "", nil
	}

	size, err := dirSize(configDir)
	if err != nil {
		return "", fmt.Errorf("calculate config directory size: %w", err)
	}

	if err := os.MkdirAll(snapshotsDir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshots directory: %w", err)
	}
	if err := checkDiskSpace(snapshotsDir, size+MinFreeDiskBytes); err != nil {
		return "", fmt.Errorf("insufficient disk space for snapshot: %w", err)
	}

	name := Prefix + time.Now().Format(DateFormat)
	path := filepath.Join(snapshotsDir, name)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	if err := fileutil.CopyDir(configDir, path); err != nil {
		if cleanupErr := os.RemoveAll(path); cleanupErr != nil {
			return "", fmt.Errorf("copy config to snapshot: %w (cleanup also failed: %v)", err, cleanupErr)
		}
		return "", fmt.Errorf("copy config to snapshot: %w", err)
	}

	if err := Cleanup(snapshotsDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to cleanup old snapshots: %v\n", err)
	}

	return name, nil
}

// List returns available snapshots sorted by date, newest first.
func List(snapshotsDir string) ([]Info, error) {
	entries, err := os.ReadDir(snapshotsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshots directory: %w", err)
	}

	var snapshots []Info
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), Prefix) {
			continue
		}

		path := filepath.Join(snapshotsDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot read snapshot %s: %v\n", entry.Name(), err)
			continue
		}

		created, err := time.Parse(DateFormat, strings.TrimPrefix(entry.Name(), Prefix))
		if err != nil {
			created = info.ModTime()
		}

		snapshots = append(snapshots, Info{
			Name:      entry.Name(),
			Path:      path,
			Created:   created,
			FileCount: countFiles(path),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Created.After(snapshots[j].Created)
	})

	return snapshots, nil
}

// Restore restores a snapshot into configDir atomically, backing up
// the current config first. A temp copy and rename swap prevent a
// broken config dir on failure.
func Restore(snapshotsDir, configDir, name string) error {
	path := filepath.Join(snapshotsDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("snapshot not found: %s", name)
	}

	if fileutil.DirHasContent(configDir) {
		backup := filepath.Join(snapshotsDir, "pre-rollback-"+time.Now().Format(DateFormat))
		if err := os.MkdirAll(backup, 0o755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
		if err := fileutil.CopyDir(configDir, backup); err != nil {
			os.RemoveAll(backup)
			return fmt.Errorf("create pre-rollback backup: %w", err)
		}
	}

	restoreID := uuid.New().String()[:8]
	tempDir := configDir + ".restore-temp-" + restoreID
	oldDir := configDir + ".restore-old-" + restoreID

	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return fmt.Errorf("create temp restore directory: %w", err)
	}
	if err := fileutil.CopyDir(path, tempDir); err != nil {
		os.RemoveAll(tempDir)
		return fmt.Errorf("copy snapshot to temp: %w", err)
	}

	_, statErr := os.Stat(configDir)
	configExists := statErr == nil

	if configExists {
		if err := os.Rename(configDir, oldDir); err != nil {
			os.RemoveAll(tempDir)
			return fmt.Errorf("rename current config: %w", err)
		}
	}

	if err := os.Rename(tempDir, configDir); err != nil {
		if configExists {
			if recoverErr := os.Rename(oldDir, configDir); recoverErr != nil {
				os.RemoveAll(tempDir)
				return fmt.Errorf("rename temp to config: %w (recovery also failed: %v)", err, recoverErr)
			}
		}
		os.RemoveAll(tempDir)
		return fmt.Errorf("rename temp to config: %w", err)
	}

	if configExists {
		os.RemoveAll(oldDir)
	}

	return nil
}

// Cleanup removes snapshots beyond the retention limit, continuing
// past individual failures.
func Cleanup(snapshotsDir string) error {
	snapshots, err := List(snapshotsDir)
	if err != nil {
		return err
	}
	if len(snapshots) <= MaxSnapshots {
		return nil
	}

	var failures []string
	for _, snap := range snapshots[MaxSnapshots:] {
		if err := os.RemoveAll(snap.Path); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", snap.Name, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("remove old snapshots: %s", strings.Join(failures, "; "))
	}
	return nil
}

// checkDiskSpace verifies dir's filesystem has requiredBytes free.
func checkDiskSpace(dir string, requiredBytes int64) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return fmt.Errorf("check disk space: %w", err)
	}

	available := int64(stat.Bavail) * int64(stat.Bsize)
	if available < requiredBytes {
		return fmt.Errorf("need %d bytes, only %d available", requiredBytes, available)
	}
	return nil
}

// dirSize totals the regular file sizes under dir.
func dirSize(dir string) (int64, error) {
	var size int64
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		return nil
	})
	return size, err
}

func countFiles(dir string) int {
	count := 0
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}
