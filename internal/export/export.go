// Package export copies the persisted entries file to a caller-chosen
// destination, or streams it to a writer for download.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hydration-backend/internal/metrics"
)

const (
	// ContentType is the declared media type of an exported file.
	ContentType = "application/xml"
	// DefaultFilename is suggested to clients downloading the file.
	DefaultFilename = "water_intake.xml"
)

// Service exports the file at a fixed source path.
type Service struct {
	src string
	log zerolog.Logger
}

// New returns a Service reading from src.
func New(src string) *Service {
	return &Service{
		src: src,
		log: log.With().Str("component", "export").Logger(),
	}
}

// Source returns the path being exported.
func (s *Service) Source() string { return s.src }

// Export copies the source file byte-for-byte to dest, replacing any file
// already there. It reports false on any failure (missing source,
// permissions, bad path); the cause is logged, never returned.
func (s *Service) Export(dest string) bool {
	err := s.copyTo(dest)
	metrics.Exports.WithLabelValues(metrics.Result(err == nil)).Inc()
	if err != nil {
		s.log.Error().Err(err).Str("dest", dest).Msg("export failed")
		return false
	}
	s.log.Info().Str("dest", dest).Msg("entries exported")
	return true
}

func (s *Service) copyTo(dest string) error {
	if dest == "" {
		return fmt.Errorf("empty destination")
	}
	in, err := os.Open(s.src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	if st, err := os.Stat(dest); err == nil && st.IsDir() {
		return fmt.Errorf("destination %q is a directory", dest)
	}

	// Temp file in dest's directory, renamed over dest; a failed copy leaves
	// dest untouched.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".export-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("replace destination: %w", err)
	}
	return nil
}

// WriteTo streams the source file to w.
func (s *Service) WriteTo(w io.Writer) (int64, error) {
	in, err := os.Open(s.src)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	return io.Copy(w, in)
}
