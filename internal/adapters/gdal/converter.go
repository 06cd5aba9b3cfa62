// Package gdal wraps the external ogr2ogr tool as an opaque conversion step:
// shapefile archive in, filtered GeoJSON out. Process management stays behind
// this single adapter boundary.
package gdal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter implements ports.FormatConverter by invoking ogr2ogr.
type Converter struct {
	binPath string
	workDir string
}

// New creates a Converter. binPath defaults to "ogr2ogr" on PATH; workDir
// defaults to the system temp directory.
func New(binPath, workDir string) *Converter {
	if binPath == "" {
		binPath = "ogr2ogr"
	}
	return &Converter{binPath: binPath, workDir: workDir}
}

// Convert writes the archive to a scratch file, runs ogr2ogr with the given
// attribute filter, and returns the produced GeoJSON. A non-zero exit or a
// missing/empty output file is an error; the caller treats it as fatal for
// the current entity-type stage.
func (c *Converter) Convert(ctx context.Context, archive []byte, filter string) ([]byte, error) {
	if _, err := exec.LookPath(c.binPath); err != nil {
		return nil, fmt.Errorf("ogr2ogr not found at %q: %w", c.binPath, err)
	}

	dir, err := os.MkdirTemp(c.workDir, "geopoint-convert-")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "input.zip")
	outPath := filepath.Join(dir, "output.geojson")
	if err := os.WriteFile(inPath, archive, 0o644); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}

	args := buildArgs(inPath, outPath, filter)
	cmd := exec.CommandContext(ctx, c.binPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ogr2ogr failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("conversion produced no output: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("conversion produced empty output for %s", inPath)
	}
	return data, nil
}

// buildArgs assembles the ogr2ogr invocation. The /vsizip/ prefix lets the
// tool read the shapefile directly out of the archive.
func buildArgs(inPath, outPath, filter string) []string {
	args := []string{
		"-f", "GeoJSON",
		outPath,
		"/vsizip/" + inPath,
		"-t_srs", "EPSG:4326",
	}
	if filter != "" {
		args = append(args, "-where", filter)
	}
	return args
}
