package update

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Apply downloads the release archive, stages the contained binary
// next to binPath, and swaps it in. Staging in the install directory
// keeps the final step a same-filesystem rename.
func (u *Updater) Apply(ctx context.Context, rel *Release, binPath string) error {
	if rel == nil || rel.AssetURL == "" {
		return errors.New("release has no downloadable asset")
	}

	archive, err := u.download(ctx, rel.AssetURL)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer os.Remove(archive)

	staged, err := u.stageBinary(archive, rel.Asset, filepath.Dir(binPath))
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if err := install(staged, binPath); err != nil {
		os.Remove(staged)
		return fmt.Errorf("install failed: %w", err)
	}
	return nil
}

// download fetches the asset into a temporary file and returns its path.
func (u *Updater) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	// The check client carries a short timeout. Downloads run under
	// the caller's context instead.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", u.cfg.Binary+"-release-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// stageBinary extracts the binary from the archive into destDir and
// returns the staged path, mode 0755.
func (u *Updater) stageBinary(archive, assetName, destDir string) (string, error) {
	want := u.binaryName()
	if strings.HasSuffix(assetName, ".zip") {
		return stageFromZip(archive, want, destDir)
	}
	return stageFromTarball(archive, want, destDir)
}

func stageFromTarball(archive, want, destDir string) (string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return "", err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return "", err
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return "", fmt.Errorf("binary %q not found in archive", want)
		}
		if err != nil {
			return "", err
		}
		if filepath.Base(hdr.Name) == want {
			return stage(destDir, want, tr)
		}
	}
}

func stageFromZip(archive, want, destDir string) (string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if filepath.Base(f.Name) != want {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		path, err := stage(destDir, want, rc)
		rc.Close()
		return path, err
	}
	return "", fmt.Errorf("binary %q not found in archive", want)
}

// stage writes the binary content to a temporary executable in destDir.
func stage(destDir, name string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(destDir, "."+name+"-staged-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// install moves the staged binary over the installed one. Most
// platforms rename over the running executable directly; Windows
// refuses that, so the old binary is moved aside first and restored
// if the swap fails.
func install(staged, binPath string) error {
	if err := os.Rename(staged, binPath); err == nil {
		return nil
	}

	backup := binPath + ".old"
	os.Remove(backup)
	if err := os.Rename(binPath, backup); err != nil {
		return fmt.Errorf("move old binary aside: %w", err)
	}
	if err := os.Rename(staged, binPath); err != nil {
		os.Rename(backup, binPath)
		return fmt.Errorf("swap in new binary: %w", err)
	}
	os.Remove(backup)
	return nil
}
