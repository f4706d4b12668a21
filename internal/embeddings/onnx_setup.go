package embeddings

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultONNXRuntimeVersion is the ONNX runtime release matching the
// onnxruntime_go binding pulled in by fastembed-go.
const DefaultONNXRuntimeVersion = "1.23.0"

// ErrUnsupportedPlatform indicates no ONNX runtime release exists for the
// current OS/arch.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

const (
	onnxReleaseURLTemplate = "https://github.com/microsoft/onnxruntime/releases/download/v%s/onnxruntime-%s-%s.tgz"

	// maxRuntimeFileSize caps each extracted file.
	maxRuntimeFileSize = 512 << 20

	downloadTimeout = 10 * time.Minute
)

// onnxPlatform names a release archive and the shared library inside it.
type onnxPlatform struct {
	archive string
	library string
}

var onnxPlatforms = map[string]onnxPlatform{
	"linux/amd64":  {archive: "linux-x64", library: "libonnxruntime.so"},
	"linux/arm64":  {archive: "linux-aarch64", library: "libonnxruntime.so"},
	"darwin/amd64": {archive: "osx-x86_64", library: "libonnxruntime.dylib"},
	"darwin/arm64": {archive: "osx-arm64", library: "libonnxruntime.dylib"},
}

func lookupPlatform(goos, goarch string) (onnxPlatform, error) {
	p, ok := onnxPlatforms[goos+"/"+goarch]
	if !ok {
		return onnxPlatform{}, fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return p, nil
}

// libraryName returns the shared library filename for goos.
func libraryName(goos string) string {
	if goos == "darwin" {
		return "libonnxruntime.dylib"
	}
	return "libonnxruntime.so"
}

func (p onnxPlatform) downloadURL(version string) string {
	return fmt.Sprintf(onnxReleaseURLTemplate, version, p.archive, version)
}

// libPrefix is the archive directory holding the shared libraries.
func (p onnxPlatform) libPrefix(version string) string {
	return fmt.Sprintf("onnxruntime-%s-%s/lib/", p.archive, version)
}

// userDir returns the home directory, or "." when it cannot be determined.
func userDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// onnxInstallDir is the managed install location, ~/.config/lexisum/lib.
func onnxInstallDir() string {
	return filepath.Join(userDir(), ".config", "lexisum", "lib")
}

// GetONNXLibraryPath returns the ONNX runtime library to load: the ONNX_PATH
// environment variable if set, else the managed install if present, else "".
func GetONNXLibraryPath() string {
	if envPath := os.Getenv("ONNX_PATH"); envPath != "" {
		return envPath
	}

	managed := filepath.Join(onnxInstallDir(), libraryName(runtime.GOOS))
	if _, err := os.Stat(managed); err == nil {
		return managed
	}
	return ""
}

// ONNXRuntimeExists reports whether an ONNX runtime library is available.
func ONNXRuntimeExists() bool {
	return GetONNXLibraryPath() != ""
}

// DownloadONNXRuntime installs the ONNX runtime for the current platform into
// the managed location. An empty version means DefaultONNXRuntimeVersion.
func DownloadONNXRuntime(ctx context.Context, version string) error {
	if version == "" {
		version = DefaultONNXRuntimeVersion
	}
	p, err := lookupPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: downloadTimeout}
	return installRuntime(ctx, client, p.downloadURL(version), onnxInstallDir(), version, p)
}

func installRuntime(ctx context.Context, client *http.Client, url, destDir, version string, p onnxPlatform) error {
	if err := os.MkdirAll(destDir, 0o700); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading ONNX runtime: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	if err := extractRuntime(resp.Body, destDir, p.libPrefix(version), p.library); err != nil {
		return fmt.Errorf("extracting archive: %w", err)
	}
	return nil
}

// extractRuntime copies the files under libPrefix out of a .tgz stream into
// destDir, flattened. It fails unless library (or a versioned variant of it)
// was among them.
func extractRuntime(r io.Reader, destDir, libPrefix, library string) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	found := false

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar: %w", err)
		}

		name := strings.TrimPrefix(header.Name, "./")
		if !strings.HasPrefix(name, libPrefix) || header.Typeflag == tar.TypeDir {
			continue
		}

		filename := path.Base(name)
		dest := filepath.Join(destDir, filename)

		switch header.Typeflag {
		case tar.TypeSymlink:
			// Links must stay inside destDir.
			if strings.ContainsAny(header.Linkname, `/\`) {
				continue
			}
			_ = os.Remove(dest)
			if err := os.Symlink(header.Linkname, dest); err != nil {
				continue
			}
		case tar.TypeReg:
			if err := writeRuntimeFile(dest, tr, header.Size); err != nil {
				return fmt.Errorf("writing file %s: %w", filename, err)
			}
		default:
			continue
		}

		if filename == library || strings.HasPrefix(filename, library+".") {
			found = true
		}
	}

	if !found {
		return fmt.Errorf("library %s not found in archive", library)
	}
	return nil
}

func writeRuntimeFile(dest string, r io.Reader, size int64) error {
	if size > maxRuntimeFileSize {
		return fmt.Errorf("file too large: %d bytes", size)
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, io.LimitReader(r, maxRuntimeFileSize)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// setONNXPathEnv exports ONNX_PATH for fastembed-go. A variable so tests can
// stub it.
var setONNXPathEnv = func(path string) error {
	return os.Setenv("ONNX_PATH", path)
}

// EnsureONNXRuntime returns the ONNX runtime library path, downloading the
// default release first if none is installed.
func EnsureONNXRuntime(ctx context.Context, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if p := GetONNXLibraryPath(); p != "" {
		return p, nil
	}

	logger.Info("ONNX runtime not found, downloading",
		zap.String("version", DefaultONNXRuntimeVersion),
		zap.String("platform", runtime.GOOS+"/"+runtime.GOARCH),
	)

	if err := DownloadONNXRuntime(ctx, ""); err != nil {
		return "", fmt.Errorf("failed to download ONNX runtime (run 'lexisum init' or set ONNX_PATH): %w", err)
	}

	p := GetONNXLibraryPath()
	if p == "" {
		return "", errors.New("ONNX runtime download completed but library not found")
	}

	logger.Info("ONNX runtime installed", zap.String("path", p))
	return p, nil
}
