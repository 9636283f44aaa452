package source

import (
	"context"
	"encoding/json"

	"github.com/spf13/afero"

	"github.com/guttosm/bpipulse/internal/logger"
)

// File reads a bpi document from a path on an afero filesystem.
type File struct {
	fs   afero.Fs
	path string
}

// NewFile returns a file source. A nil fs means the OS filesystem.
func NewFile(fs afero.Fs, path string) *File {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &File{fs: fs, path: path}
}

// Name identifies the source in logs as "file:<path>".
func (f *File) Name() string { return "file:" + f.path }

// Get reads the whole file. ctx is checked once before the read.
func (f *File) Get(ctx context.Context) (json.RawMessage, bool) {
	log := logger.Component("source").With().Str("source", f.Name()).Logger()

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Msg("context done before read")
		return nil, false
	}

	b, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		log.Error().Err(err).Msg("failed to open file")
		return nil, false
	}

	raw, ok := document(b)
	if !ok {
		log.Error().Int("bytes", len(b)).Msg("file is not a valid json document")
		return nil, false
	}
	log.Debug().Int("bytes", len(raw)).Msg("file loaded")
	return raw, true
}
