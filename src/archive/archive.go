// Package archive reads and writes instance backup archives. An archive
// is a tar.gz containing metadata.json (the manifest), config.json, the
// service unit, and the instance state directory under state/.
package archive

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Member names inside the archive.
const (
	ManifestMember = "metadata.json"
	ConfigMember   = "config.json"
	ServiceMember  = "service"
	StatePrefix    = "state/"
)

// ErrNoManifest means the archive has no metadata.json and cannot be
// restored.
var ErrNoManifest = errors.New("archive has no manifest")

// Manifest records where the archive came from. The port is for display
// and sanity only; restore always allocates a fresh one.
type Manifest struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Port       int       `json:"port"`
	Model      string    `json:"model,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	BackupTime time.Time `json:"backup_time"`
}

// Create writes the archive for an instance. configPath and unitPath may
// name files that no longer exist; those members are simply omitted, so a
// half-broken instance can still be backed up. Returns the archive size.
func Create(dest string, mf Manifest, stateDir, configPath, unitPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	if err := writeBytesMember(tw, ManifestMember, mustJSON(mf), mf.BackupTime); err != nil {
		return 0, err
	}
	if err := writeFileMember(tw, ConfigMember, configPath); err != nil {
		return 0, err
	}
	if err := writeFileMember(tw, ServiceMember, unitPath); err != nil {
		return 0, err
	}
	if err := writeTree(tw, StatePrefix, stateDir); err != nil {
		return 0, err
	}

	if err := tw.Close(); err != nil {
		return 0, err
	}
	if err := gz.Close(); err != nil {
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	info, err := os.Stat(dest)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ReadManifest extracts only the manifest from the archive.
func ReadManifest(path string) (Manifest, error) {
	var mf Manifest
	data, err := readMember(path, ManifestMember)
	if err != nil {
		return mf, fmt.Errorf("%w: %v", ErrNoManifest, err)
	}
	if err := json.Unmarshal(data, &mf); err != nil {
		return mf, fmt.Errorf("parse manifest: %w", err)
	}
	if mf.Name == "" {
		return mf, ErrNoManifest
	}
	return mf, nil
}

// ReadConfig extracts the archived instance config bytes.
func ReadConfig(path string) ([]byte, error) {
	return readMember(path, ConfigMember)
}

// ExtractState unpacks the state/ tree into destDir. Member paths are
// checked against traversal: absolute names and ".." components are
// rejected. When progress is non-nil the raw archive read is reported
// through it.
func ExtractState(path, destDir string, progress func(r io.Reader, total int64) io.Reader) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var src io.Reader = f
	if progress != nil {
		info, err := f.Stat()
		if err != nil {
			return err
		}
		src = progress(f, info.Size())
	}

	gz, err := gzip.NewReader(src)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	defer gz.Close()
	tr := tar.NewReader(gz)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", path, err)
		}
		rel, ok := strings.CutPrefix(hdr.Name, StatePrefix)
		if !ok || rel == "" {
			continue
		}
		if err := checkMemberPath(rel); err != nil {
			return err
		}
		target := filepath.Join(destDir, filepath.FromSlash(rel))
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(hdr.Mode)&0o777|0o700); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fs.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// Symlinks and specials are not part of instance state.
			continue
		}
	}
}

// Sha256File returns the hex sha256 of a file, for backup summaries.
func Sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func checkMemberPath(rel string) error {
	if strings.HasPrefix(rel, "/") {
		return fmt.Errorf("unsafe archive member path: %q", rel)
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return fmt.Errorf("unsafe archive member path: %q", rel)
		}
	}
	return nil
}

func readMember(path, member string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("archive member %s not found in %s", member, path)
		}
		if err != nil {
			return nil, fmt.Errorf("read archive %s: %w", path, err)
		}
		if hdr.Name == member {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, tr); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		}
	}
}

func writeBytesMember(tw *tar.Writer, name string, data []byte, mtime time.Time) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: mtime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

func writeFileMember(tw *tar.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}

func writeTree(tw *tar.Writer, prefix, root string) error {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = prefix + filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}

func mustJSON(v any) []byte {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err) // Manifest is a plain struct; marshal cannot fail.
	}
	return append(data, '\n')
}
