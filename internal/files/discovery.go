package files

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoListingsFile is returned when a source directory holds no readable
// listings export
var ErrNoListingsFile = errors.New("no listings file in directory")

// listingExtensions are the formats the loader understands
var listingExtensions = []string{".csv", ".xlsx", ".xlsm"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds listings exports relative to a base path
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		basePath: basePath,
		logger:   logger.With(slog.String("component", "file_discovery")),
	}
}

func (d *Discovery) abs(p string) string {
	if filepath.IsAbs(p) || d.basePath == "" {
		return p
	}
	return filepath.Join(d.basePath, p)
}

// FindListingFiles returns the listings exports in dir, newest first.
// Office lock files ("~$...") and hidden files are skipped.
func (d *Discovery) FindListingFiles(dir string) ([]FileInfo, error) {
	fullPath := d.abs(dir)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if !IsListingFile(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// Resolve turns a configured source into the file to load. A directory
// resolves to its newest listings export; a path that does not exist is
// returned unchanged so the loader can report it.
func (d *Discovery) Resolve(source string) (string, error) {
	path := d.abs(source)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	found, err := d.FindListingFiles(path)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoListingsFile, path)
	}

	latest := found[0]
	d.logger.Info("Resolved listings source",
		slog.String("directory", path),
		slog.String("file", latest.Name),
		slog.Int("candidates", len(found)),
		slog.Time("modified", latest.ModTime))
	return latest.Path, nil
}

// IsListingFile reports whether name carries a supported extension
func IsListingFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range listingExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// EnsureOutputDir creates the parent directory of an output file and checks
// it is writable
func EnsureOutputDir(file string) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".staypulse-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
