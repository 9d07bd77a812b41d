package source

import (
	"context"
	"fmt"
	"os"
	"strconv"

	domerrors "github.com/mferrari98/cont-portal/internal/errors"
)

// FileSource reads the workbook from the local filesystem. Used for
// deployments where the spreadsheet is dropped next to the binary or
// mounted into the container.
type FileSource struct {
	path string
}

// NewFileSource creates a file source for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source.
func (s *FileSource) Name() string { return BackendFile }

// Ref implements Source.
func (s *FileSource) Ref() string { return s.path }

// Stamp returns the file modification time as the version marker.
func (s *FileSource) Stamp(_ context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", s.wrapErr(err)
	}
	return modStamp(info), nil
}

// Fetch reads and validates the file contents.
func (s *FileSource) Fetch(_ context.Context) ([]byte, string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, "", s.wrapErr(err)
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		return nil, "", s.wrapErr(err)
	}

	if err := ValidatePayload(payload, ""); err != nil {
		return nil, "", domerrors.NewSourceError(BackendFile, s.path, 0, err)
	}

	return payload, modStamp(info), nil
}

func (s *FileSource) wrapErr(err error) error {
	if os.IsNotExist(err) {
		return domerrors.NewSourceError(BackendFile, s.path, 0, domerrors.ErrDirectoryNotFound)
	}
	return domerrors.NewSourceError(BackendFile, s.path, 0,
		fmt.Errorf("%w: %v", domerrors.ErrSourceUnavailable, err))
}

func modStamp(info os.FileInfo) string {
	return strconv.FormatInt(info.ModTime().UnixNano(), 10)
}
