// Package gse adapts the gse dictionary segmenter to driven.Segmenter.
package gse

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-ego/gse"

	"github.com/custodia-labs/archivevault/internal/core/ports/driven"
	"github.com/custodia-labs/archivevault/internal/logger"
)

// Segmenter lazily loads the dictionary compiled into the binary on first use.
type Segmenter struct {
	once sync.Once
	seg  gse.Segmenter
	err  error
}

var _ driven.Segmenter = (*Segmenter)(nil)

// New returns a segmenter. The dictionary is loaded on the first Cut.
func New() *Segmenter {
	return &Segmenter{}
}

// Load loads the dictionary now, reporting any failure.
func (s *Segmenter) Load() error {
	s.once.Do(func() {
		done := logger.Timed("loading segmenter dictionary")
		defer done()
		s.seg.SkipLog = true
		if err := s.seg.LoadDictEmbed(); err != nil {
			s.err = fmt.Errorf("loading segmenter dictionary: %w", err)
		}
	})
	return s.err
}

// Cut splits text into words without HMM so output is dictionary-stable.
// If the dictionary failed to load, text is split on whitespace.
func (s *Segmenter) Cut(text string) []string {
	if err := s.Load(); err != nil {
		logger.Warn("segmenter unavailable: %v", err)
		return strings.Fields(text)
	}
	return s.seg.Cut(text, false)
}
