package imageedit

import (
	"context"
	"fmt"
	"image"
	"sync"
)

// BackgroundRemover segments the subject of a PNG image and returns a PNG
// with the background made transparent.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, pngData []byte) ([]byte, error)
}

// Artifact is the immutable output of a saved session.
type Artifact struct {
	PNG    []byte
	Width  int
	Height int
}

// DataURI returns the artifact as a base64 PNG data URI.
func (a *Artifact) DataURI() string {
	return DataURI(a.PNG)
}

type Option func(*Session)

// WithBackgroundRemover enables RemoveBackground.
func WithBackgroundRemover(r BackgroundRemover) Option {
	return func(s *Session) {
		s.remover = r
	}
}

// WithMaxPixels bounds the size of images the session accepts, both on Load
// and from the background remover. Zero or less disables the check.
func WithMaxPixels(n int) Option {
	return func(s *Session) {
		s.maxPixels = n
	}
}

// WithParams sets the initial parameters instead of the neutral ones.
func WithParams(p Params) Option {
	return func(s *Session) {
		s.params = p.Clamped()
	}
}

// Session is one image edit: a source bitmap, the current parameters and the
// last rendered preview. It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	source  *image.RGBA
	params  Params
	preview *image.NRGBA
	closed  bool
	remover BackgroundRemover

	maxPixels int
}

func NewSession(opts ...Option) *Session {
	s := &Session{params: DefaultParams(), maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a session for src and renders the first preview.
func Open(src []byte, opts ...Option) (*Session, error) {
	s := NewSession(opts...)
	if err := s.Load(src); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the source image and re-renders. When src cannot be decoded
// the previous source and preview stay in place.
func (s *Session) Load(src []byte) error {
	img, err := DecodeLimit(src, s.maxPixels)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.source = img
	s.preview = render(s.source, s.params)
	return nil
}

// SetParameter updates one parameter by name and re-renders the preview.
func (s *Session) SetParameter(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	next := s.params
	if err := next.set(name, value); err != nil {
		return err
	}
	s.params = next
	s.renderLocked()
	return nil
}

// SetParams replaces every parameter at once and re-renders the preview.
func (s *Session) SetParams(p Params) error {
	return s.Update(func(cur *Params) error {
		*cur = p
		return nil
	})
}

// Update applies fn to a copy of the parameters while holding the session
// lock, then clamps and re-renders. When fn fails nothing changes.
func (s *Session) Update(fn func(p *Params) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	next := s.params
	if err := fn(&next); err != nil {
		return err
	}
	s.params = next.Clamped()
	s.renderLocked()
	return nil
}

func (s *Session) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Render recomputes the preview from the source and current parameters.
// The returned raster must not be modified.
func (s *Session) Render() (*image.NRGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.source == nil {
		return nil, ErrNoSource
	}
	s.renderLocked()
	return s.preview, nil
}

func (s *Session) renderLocked() {
	if s.source == nil {
		return
	}
	s.preview = render(s.source, s.params)
}

// Preview returns the last rendered raster, or nil before the first render.
func (s *Session) Preview() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// PreviewPNG encodes the current preview.
func (s *Session) PreviewPNG() ([]byte, error) {
	preview := s.Preview()
	if preview == nil {
		return nil, ErrNoSource
	}
	return EncodePNG(preview)
}

// Save encodes the current raster as PNG and closes the session.
func (s *Session) Save() (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.preview == nil {
		return nil, ErrNoSource
	}

	data, err := EncodePNG(s.preview)
	if err != nil {
		return nil, err
	}
	b := s.preview.Bounds()
	s.closed = true
	return &Artifact{PNG: data, Width: b.Dx(), Height: b.Dy()}, nil
}

// Cancel closes the session without producing output.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.closed = true
	s.source = nil
	s.preview = nil
	return nil
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// RemoveBackground sends the current source to the configured remover and,
// on success, replaces the source with the segmented image. Any failure,
// including ctx cancellation, leaves the session as it was. If another source
// was loaded while the remover was running, the result is discarded with
// ErrSourceChanged.
func (s *Session) RemoveBackground(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.remover == nil {
		s.mu.Unlock()
		return ErrBackgroundRemovalUnavailable
	}
	if s.source == nil {
		s.mu.Unlock()
		return ErrNoSource
	}
	source := s.source
	remover := s.remover
	s.mu.Unlock()

	input, err := EncodePNG(source)
	if err != nil {
		return err
	}
	output, err := remover.RemoveBackground(ctx, input)
	if err != nil {
		return fmt.Errorf("background removal failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := DecodeLimit(output, s.maxPixels)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.source != source {
		return ErrSourceChanged
	}
	s.source = img
	s.renderLocked()
	return nil
}
