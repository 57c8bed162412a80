package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crinf-backoffice/internal/imageedit"
	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/supabase"
)

var ErrSessionNotFound = errors.New("image session not found")

type sessionEntry struct {
	session  *imageedit.Session
	lastUsed time.Time
}

// ImageService keeps the open edit sessions of the admin screens.
type ImageService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	ttl      time.Duration
	remover  imageedit.BackgroundRemover
	storage  ObjectStorage
	events   supabase.EventPublisher
	logger   *zap.Logger
	now      func() time.Time

	maxPixels int
}

// NewImageService creates the session registry. remover and storage may be
// nil: background removal then reports unavailable and saved images are
// returned inline only.
func NewImageService(ttl time.Duration, remover imageedit.BackgroundRemover, storage ObjectStorage, events supabase.EventPublisher, logger *zap.Logger) *ImageService {
	if events == nil {
		events = supabase.NopPublisher{}
	}
	return &ImageService{
		sessions: make(map[uuid.UUID]*sessionEntry),
		ttl:      ttl,
		remover:  remover,
		storage:  storage,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// WithMaxPixels bounds the size of the images sessions accept.
func (s *ImageService) WithMaxPixels(n int) *ImageService {
	s.maxPixels = n
	return s
}

// Open decodes src and registers a new session for it.
func (s *ImageService) Open(src []byte) (uuid.UUID, *imageedit.Session, error) {
	var opts []imageedit.Option
	if s.maxPixels != 0 {
		opts = append(opts, imageedit.WithMaxPixels(s.maxPixels))
	}
	if s.remover != nil {
		opts = append(opts, imageedit.WithBackgroundRemover(s.remover))
	}
	session, err := imageedit.Open(src, opts...)
	if err != nil {
		return uuid.Nil, nil, err
	}

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = &sessionEntry{session: session, lastUsed: s.now()}
	s.mu.Unlock()

	s.logger.Debug("image session opened", zap.String("session_id", id.String()))
	return id, session, nil
}

func (s *ImageService) Get(id uuid.UUID) (*imageedit.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastUsed = s.now()
	return entry.session, nil
}

// Adjust applies every parameter present in req and re-renders once. The
// merge happens under the session lock, so concurrent adjustments of
// different fields do not overwrite each other. An invalid clip shape leaves
// the session untouched.
func (s *ImageService) Adjust(id uuid.UUID, req models.ImageParamsRequest) (*imageedit.Session, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	var clip *imageedit.ClipShape
	if req.ClipShape != nil {
		shape, err := imageedit.ParseClipShape(*req.ClipShape)
		if err != nil {
			return nil, err
		}
		clip = &shape
	}

	err = session.Update(func(p *imageedit.Params) error {
		if req.Brightness != nil {
			p.Brightness = *req.Brightness
		}
		if req.Contrast != nil {
			p.Contrast = *req.Contrast
		}
		if req.Saturation != nil {
			p.Saturation = *req.Saturation
		}
		if req.Scale != nil {
			p.Scale = *req.Scale
		}
		if clip != nil {
			p.Clip = *clip
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SetParameter updates one named parameter (brightness, contrast,
// saturation, scale or clipShape) from its textual value.
func (s *ImageService) SetParameter(id uuid.UUID, name, value string) (*imageedit.Session, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := session.SetParameter(name, value); err != nil {
		return nil, err
	}
	return session, nil
}

// Save renders the final PNG, uploads it when storage is configured and
// closes the session.
func (s *ImageService) Save(id uuid.UUID, actor string) (*imageedit.Artifact, string, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}

	artifact, err := session.Save()
	if err != nil {
		return nil, "", err
	}
	s.remove(id)

	var url string
	if s.storage != nil {
		url, err = s.storage.Upload(supabase.ImagePath(uuid.New(), s.now()), "image/png", artifact.PNG)
		if err != nil {
			// The artifact is still returned inline.
			s.logger.Warn("failed to upload edited image", zap.String("session_id", id.String()), zap.Error(err))
			url = ""
		}
	}

	if err := s.events.Publish(supabase.EventImageSaved, actor,
		supabase.ImageSavedPayload(id.String(), artifact.Width, artifact.Height, url)); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event", supabase.EventImageSaved), zap.Error(err))
	}
	return artifact, url, nil
}

func (s *ImageService) Cancel(id uuid.UUID) error {
	session, err := s.Get(id)
	if err != nil {
		return err
	}
	s.remove(id)
	return session.Cancel()
}

func (s *ImageService) RemoveBackground(ctx context.Context, id uuid.UUID) (*imageedit.Session, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := session.RemoveBackground(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// Sweep cancels sessions idle for longer than the TTL and returns how many
// were dropped.
func (s *ImageService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*imageedit.Session
	for id, entry := range s.sessions {
		if entry.lastUsed.Before(cutoff) {
			expired = append(expired, entry.session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		_ = session.Cancel()
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *ImageService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired image sessions dropped", zap.Int("count", n))
			}
		}
	}
}

func (s *ImageService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *ImageService) remove(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
