package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/HugoSmits86/nativewebp"
	"github.com/qmuntal/gltf"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
	"github.com/Carmen-Shannon/oxy-gltf/engine/texture"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func newTexdumpCommand(root *rootOptions) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "texdump <file.gltf|file.glb> <outdir>",
		Short: "Unswizzle every image of a model and write it as lossless WebP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := dumpTextures(root.logger, args[0], args[1], workers)
			for _, p := range written {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "number of images encoded in parallel")
	return cmd
}

// dumpTextures decodes, unswizzles and encodes every image of the model at path into outDir.
// Images that fail are logged and reported in the returned error; the rest are still written.
//
// Parameters:
//   - logger: receives per-image failures
//   - path: the model file
//   - outDir: the directory WebP files are written to, created if missing
//   - workers: the worker pool size
//
// Returns:
//   - []string: the written files in image order
//   - error: an open error, or the joined per-image errors
func dumpTextures(logger *slog.Logger, path, outDir string, workers int) ([]string, error) {
	doc, err := loader.Open(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}
	if workers < 1 {
		workers = 1
	}

	baseDir := filepath.Dir(path)
	results := make([]string, len(doc.Images))
	errs := make([]error, len(doc.Images))
	bar := newBar(len(doc.Images), "encoding textures")

	pool := worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
	var wg sync.WaitGroup
	var barMu sync.Mutex
	for i := range doc.Images {
		wg.Add(1)
		idx := i
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					barMu.Lock()
					_ = bar.Add(1)
					barMu.Unlock()
				}()

				name := imageFileName(idx, doc.Images[idx].Name)
				out := filepath.Join(outDir, name)
				if err := dumpImage(doc, baseDir, idx, out); err != nil {
					errs[idx] = fmt.Errorf("image %d: %w", idx, err)
					logger.Error("failed to dump texture", slog.String("path", path), slog.Int("image", idx), slog.Any("error", err))
					return nil, err
				}
				results[idx] = out
				return out, nil
			},
		})
	}
	wg.Wait()
	_ = bar.Finish()

	var written []string
	for _, p := range results {
		if p != "" {
			written = append(written, p)
		}
	}
	return written, errors.Join(errs...)
}

func dumpImage(doc *gltf.Document, baseDir string, index int, out string) error {
	data, mimeType, err := loader.ReadImage(doc, baseDir, index)
	if err != nil {
		return err
	}
	img, err := texture.Decode(data, mimeType)
	if err != nil {
		return err
	}
	tex, err := texture.Unswizzle(texture.FromImage(img))
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, tex.Image(), nil); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", out, err)
	}
	return f.Close()
}

// imageFileName returns "<index>_<name>.webp", dropping characters unsafe in file names.
func imageFileName(index int, name string) string {
	clean := unsafeNameChars.ReplaceAllString(name, "_")
	if clean == "" || clean == "_" {
		return fmt.Sprintf("%03d.webp", index)
	}
	return fmt.Sprintf("%03d_%s.webp", index, clean)
}
