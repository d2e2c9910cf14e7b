// Package archive bundles job artifacts into a downloadable zip.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TranscriptName is the name of the transcript entry inside the bundle.
const TranscriptName = "transcription.txt"

// ScreenshotsPrefix groups kept frames inside the bundle.
const ScreenshotsPrefix = "screenshots/"

// Build writes a zip at dest containing the transcript and every screenshot
// under a screenshots/ grouping. Screenshot paths keep their base names.
func Build(dest, transcriptPath string, screenshotPaths []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	if err := addFile(zw, transcriptPath, TranscriptName); err != nil {
		_ = zw.Close()
		return err
	}
	for _, path := range screenshotPaths {
		if err := addFile(zw, path, ScreenshotsPrefix+filepath.Base(path)); err != nil {
			_ = zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return out.Close()
}

func addFile(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s for archive: %w", src, err)
	}
	defer in.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(entry, in); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	return nil
}
