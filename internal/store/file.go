package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-skywatch/internal/ephem"
	"github.com/litescript/ls-skywatch/internal/meteor"
)

// File is a Repository backed by JSON files under a data directory: one
// samples file per body plus one file of shower reports. The whole data set
// is held in memory and rewritten on every save.
type File struct {
	dir string
	mem *Memory

	mu sync.Mutex // serializes writes to disk
}

// NewFile opens (creating if needed) a file repository in dataDir and loads
// what is already there.
func NewFile(dataDir string) (*File, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "samples"), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	f := &File{dir: dataDir, mem: NewMemory()}
	if err := f.load(); err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	return f, nil
}

// FindSamples implements Repository.
func (f *File) FindSamples(ctx context.Context, body string, start, end time.Time) ([]ephem.Sample, error) {
	return f.mem.FindSamples(ctx, body, start, end)
}

// SaveSamples implements Repository.
func (f *File) SaveSamples(ctx context.Context, body string, samples []ephem.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mem.SaveSamples(ctx, body, samples); err != nil {
		return err
	}
	all, _ := f.mem.FindSamples(ctx, body, time.Time{}, maxTime)
	return writeJSON(f.samplesPath(bodyKey(body)), all)
}

// FindShowers implements Repository.
func (f *File) FindShowers(ctx context.Context, shower string, year int) ([]meteor.Report, error) {
	return f.mem.FindShowers(ctx, shower, year)
}

// SaveShowers implements Repository.
func (f *File) SaveShowers(ctx context.Context, reports []meteor.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mem.SaveShowers(ctx, reports); err != nil {
		return err
	}

	f.mem.mu.RLock()
	all := make([]meteor.Report, 0, len(f.mem.showers))
	for _, r := range f.mem.showers {
		all = append(all, r)
	}
	f.mem.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return showerKey(all[i]) < showerKey(all[j]) })

	return writeJSON(f.showersPath(), all)
}

var maxTime = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func (f *File) samplesPath(key string) string {
	return filepath.Join(f.dir, "samples", key+".json")
}

func (f *File) showersPath() string {
	return filepath.Join(f.dir, "meteor_showers.json")
}

func (f *File) load() error {
	paths, err := filepath.Glob(filepath.Join(f.dir, "samples", "*.json"))
	if err != nil {
		return err
	}
	for _, p := range paths {
		var samples []ephem.Sample
		if err := readJSON(p, &samples); err != nil {
			return err
		}
		key := filepath.Base(p)
		key = key[:len(key)-len(".json")]
		f.mem.putSamples(key, samples)
	}

	var reports []meteor.Report
	if err := readJSON(f.showersPath(), &reports); err != nil {
		return err
	}
	for _, r := range reports {
		f.mem.showers[showerKey(r)] = r
	}
	return nil
}

// readJSON decodes path into v. A missing file leaves v untouched.
func readJSON(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeJSON replaces path atomically with the indented encoding of v.
func writeJSON(path string, v interface{}) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
