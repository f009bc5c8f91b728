// Package loader finds windstyle source files and parses them concurrently.
// Each file gets its own parser, so files never share state; results come
// back in the order the files were given.
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/lemonberrylabs/windstyle/pkg/ast"
	"github.com/lemonberrylabs/windstyle/pkg/parser"
	"golang.org/x/sync/errgroup"
)

// Options controls which files are loaded and how.
type Options struct {
	// Extensions lists the file extensions to load, e.g. ".wss".
	Extensions []string
	// Workers bounds the number of files parsed at once. Values below 1
	// mean one worker.
	Workers int
	// MaxSourceSize rejects larger files. Zero or less disables the limit.
	MaxSourceSize int
}

// Result is the outcome for one file. Err holds a read error or the parse
// error; Program is nil when Err is set.
type Result struct {
	Path    string
	ID      string // base name without extension
	Source  string
	Program *ast.Program
	Err     error
}

// Collect expands roots into a sorted list of source files. Directories are
// walked recursively; files are kept as given regardless of extension.
func Collect(roots []string, extensions []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && slices.Contains(extensions, filepath.Ext(path)) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Dir parses every source file under dir.
func Dir(ctx context.Context, dir string, opts Options) ([]Result, error) {
	paths, err := Collect([]string{dir}, opts.Extensions)
	if err != nil {
		return nil, err
	}
	return Files(ctx, paths, opts)
}

// Files parses the given files concurrently. Per-file failures are reported
// in each Result; the returned error is non-nil only when ctx ends first.
func Files(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = parseFile(path, opts.MaxSourceSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseFile(path string, limit int) Result {
	res := Result{Path: path, ID: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", path, err)
		return res
	}
	res.Source = string(data)
	res.Program, res.Err = parser.ParseWithLimit(res.Source, limit)
	return res
}
