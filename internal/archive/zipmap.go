package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrBadArchive       = errors.New("bad archive")
	ErrMemberNotFound   = errors.New("member not found in archive")
	ErrMemberUnreadable = errors.New("member unreadable")
)

// Archive is a read-only view over an export zip held entirely in memory.
// Each analysis owns its own Archive; nothing in it is shared.
type Archive struct {
	zipReader *zip.Reader
	members   []*zip.File
}

// Open wraps data as a zip container. Any container-level failure is reported as ErrBadArchive.
func Open(data []byte) (*Archive, error) {
	zipReader, openErr := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if openErr != nil {
		return nil, fmt.Errorf("%w: open zip: %v", ErrBadArchive, openErr)
	}
	zipReader.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	members := make([]*zip.File, 0, len(zipReader.File))
	for _, zipFile := range zipReader.File {
		if zipFile.FileInfo().IsDir() || strings.HasSuffix(zipFile.Name, "/") {
			continue
		}
		members = append(members, zipFile)
	}
	return &Archive{zipReader: zipReader, members: members}, nil
}

// Members lists slash-normalized member paths in archive order, directories excluded.
func (a *Archive) Members() []string {
	names := make([]string, 0, len(a.members))
	for _, zipFile := range a.members {
		names = append(names, normalizeName(zipFile.Name))
	}
	return names
}

// ReadMember returns the first member whose base name equals basename exactly.
func (a *Archive) ReadMember(basename string) ([]byte, error) {
	for _, zipFile := range a.members {
		if BaseName(zipFile.Name) != basename {
			continue
		}
		return readZipFile(zipFile)
	}
	return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, basename)
}

// ReadAllMatching returns every member named basename whose full path contains pathSubstring.
// Members that fail to read are skipped; the failure is only reported when nothing could be read.
func (a *Archive) ReadAllMatching(basename, pathSubstring string) ([][]byte, error) {
	var (
		found    [][]byte
		firstErr error
	)
	for _, zipFile := range a.members {
		normalizedName := normalizeName(zipFile.Name)
		if path.Base(normalizedName) != basename || !strings.Contains(normalizedName, pathSubstring) {
			continue
		}
		contentBytes, readErr := readZipFile(zipFile)
		if readErr != nil {
			if firstErr == nil {
				firstErr = readErr
			}
			continue
		}
		found = append(found, contentBytes)
	}
	if len(found) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, fmt.Errorf("%w: %s under %q", ErrMemberNotFound, basename, pathSubstring)
	}
	return found, nil
}

// BaseName returns the final element of a member path, whichever separator the archiver used.
func BaseName(memberName string) string {
	return path.Base(normalizeName(memberName))
}

func readZipFile(zipFile *zip.File) ([]byte, error) {
	fileReader, openFileErr := zipFile.Open()
	if openFileErr != nil {
		return nil, fmt.Errorf("%w: open zip entry %q: %v", ErrMemberUnreadable, zipFile.Name, openFileErr)
	}
	defer fileReader.Close()
	contentBytes, readErr := io.ReadAll(fileReader)
	if readErr != nil {
		return nil, fmt.Errorf("%w: read zip entry %q: %v", ErrMemberUnreadable, zipFile.Name, readErr)
	}
	return contentBytes, nil
}

func normalizeName(name string) string {
	return filepath.ToSlash(strings.ReplaceAll(name, `\`, "/"))
}
