package envelope

import (
	"os"
	"strings"

	apperrors "github.com/Tsinling0525/synapse/errors"
)

// ReadFile returns the raw content of the envelope at path.
func ReadFile(path string) ([]byte, error) {
	meta := map[string]string{apperrors.MetaPath: path}
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.WithMetadata(apperrors.CodeFileNotFound, "file not found: no path given", meta)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeFileNotFound, "file not found: "+path, meta, err)
	}
	if fi.IsDir() {
		return nil, apperrors.WithMetadata(apperrors.CodeFileNotFound, "file not found: "+path+" is a directory", meta)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeFileNotFound, "file not readable: "+path, meta, err)
	}
	return b, nil
}
