// Copyright 2026 The Bitforge Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the archive compression algorithm.
type Compression int

const (
	// CompressionZstd is the default: good ratios on the text-heavy
	// content of a build root (scripts, constraints, reports) at
	// moderate CPU cost.
	CompressionZstd Compression = iota

	// CompressionLZ4 trades ratio for speed. Useful when archives are
	// produced on every CI run and shipped over a fast link.
	CompressionLZ4
)

// String returns the algorithm name as used in configuration.
func (c Compression) String() string {
	if c == CompressionLZ4 {
		return "lz4"
	}
	return "zstd"
}

// suffix returns the archive file suffix for the algorithm.
func (c Compression) suffix() string {
	if c == CompressionLZ4 {
		return ".tar.lz4"
	}
	return ".tar.zst"
}

// ParseCompression parses an algorithm name from configuration.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown archive compression %q (valid: zstd, lz4)", name)
	}
}

// ArchiveName returns the deterministic archive file name for a
// target, e.g. "blinky.tar.zst".
func ArchiveName(target string, compression Compression) string {
	return target + compression.suffix()
}

// WriteArchive packs every regular file under root into a compressed
// tar at destination, for shipping a completed build to another
// machine or attaching it to CI. The archive is deterministic: entries
// are sorted by path, timestamps are zeroed, ownership is dropped, and
// modes are normalized to 0644 (0755 for executables), so archiving
// the same build root twice yields byte-identical output.
//
// When destination lies inside root it is excluded from the walk, so
// re-archiving a build root never packs a stale archive into the new
// one.
func WriteArchive(root, destination string, compression Compression) error {
	absoluteDestination, err := filepath.Abs(destination)
	if err != nil {
		return fmt.Errorf("resolving archive destination: %w", err)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if absolutePath, err := filepath.Abs(path); err == nil && absolutePath == absoluteDestination {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking build root %s: %w", root, err)
	}
	sort.Strings(paths)

	file, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", destination, err)
	}
	defer file.Close()

	compressor, err := newCompressor(file, compression)
	if err != nil {
		return err
	}

	tarWriter := tar.NewWriter(compressor)
	for _, path := range paths {
		if err := writeEntry(tarWriter, root, path); err != nil {
			return err
		}
	}
	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("finalizing archive compression: %w", err)
	}
	return file.Close()
}

// ExtractArchive unpacks an archive written by WriteArchive into
// destination, creating it if needed. Entry paths are verified to stay
// inside destination.
func ExtractArchive(archivePath, destination string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer file.Close()

	decompressor, err := newDecompressor(file, archivePath)
	if err != nil {
		return err
	}
	defer decompressor.Close()

	tarReader := tar.NewReader(decompressor)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive %s: %w", archivePath, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		target := filepath.Join(destination, filepath.Clean(header.Name))
		relative, err := filepath.Rel(destination, target)
		if err != nil || strings.HasPrefix(relative, "..") {
			return fmt.Errorf("archive entry %q escapes destination", header.Name)
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		output, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(header.Mode))
		if err != nil {
			return fmt.Errorf("creating %s: %w", target, err)
		}
		if _, err := io.Copy(output, tarReader); err != nil {
			output.Close()
			return fmt.Errorf("extracting %s: %w", header.Name, err)
		}
		if err := output.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", target, err)
		}
	}
}

// writeEntry adds one regular file to the archive with normalized
// metadata.
func writeEntry(tarWriter *tar.Writer, root, path string) error {
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return fmt.Errorf("relativizing %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	mode := int64(0644)
	if info.Mode()&0111 != 0 {
		mode = 0755
	}

	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     filepath.ToSlash(relative),
		Size:     info.Size(),
		Mode:     mode,
		Format:   tar.FormatPAX,
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("writing header for %s: %w", relative, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(tarWriter, file); err != nil {
		return fmt.Errorf("archiving %s: %w", relative, err)
	}
	return nil
}

func newCompressor(file *os.File, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case CompressionLZ4:
		return lz4.NewWriter(file), nil
	case CompressionZstd:
		writer, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("initializing zstd writer: %w", err)
		}
		return writer, nil
	default:
		return nil, fmt.Errorf("unsupported archive compression: %d", compression)
	}
}

func newDecompressor(file *os.File, archivePath string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(archivePath, ".tar.lz4"):
		return io.NopCloser(lz4.NewReader(file)), nil
	case strings.HasSuffix(archivePath, ".tar.zst"):
		reader, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("initializing zstd reader: %w", err)
		}
		return reader.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unrecognized archive suffix on %s (want .tar.zst or .tar.lz4)", archivePath)
	}
}
