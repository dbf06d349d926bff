package sitecontent

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Session owns the block list of one editing session. Edits and upload
// completions are applied one at a time under its lock.
//
// Uploads started by SubmitSingle and SubmitMultiple run outside the lock.
// When one completes, the target block is found again by identity, so a block
// that was moved in the meantime still receives its media and a block that
// was removed drops it.
type Session struct {
	mu       sync.Mutex
	list     List
	uploader Uploader
	logger   *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger used for discarded upload results.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession starts a session over a copy of l.
func NewSession(l List, u Uploader, opts ...SessionOption) *Session {
	s := &Session{
		list:     l.Clone(),
		uploader: u,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.keyAll()
	return s
}

// List returns a snapshot of the current block list.
func (s *Session) List() List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Clone()
}

// Apply replaces the list with fn's result. On error the list is unchanged.
func (s *Session) Apply(fn func(List) (List, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.list.Clone())
	if err != nil {
		return err
	}
	s.list = next
	s.keyAll()
	return nil
}

func (s *Session) keyAll() {
	for i := range s.list {
		s.list[i].ensureKey()
	}
}

// SubmitSingle uploads f and binds the result to the single-media slot of
// the block at index: an image block (replacing its images), a cover image,
// an image specification, an uploaded video or a manual download.
//
// If the block is removed before the upload finishes, or a newer SubmitSingle
// targets the same block, the result is discarded and the returned error is
// nil. A transport failure returns *UploadError and leaves the block as it was.
func (s *Session) SubmitSingle(ctx context.Context, index int, f File) (MediaRef, error) {
	s.mu.Lock()
	if err := checkIndex("submit", index, len(s.list)); err != nil {
		s.mu.Unlock()
		return "", err
	}
	target := s.list[index]
	if !acceptsSingle(target) {
		s.mu.Unlock()
		return "", invariant("submit", "%s has no single media slot", describe(target))
	}
	s.list[index].ticket++
	ticket := s.list[index].ticket
	s.mu.Unlock()

	ref, err := s.uploader.Upload(context.WithoutCancel(ctx), f)
	if err != nil {
		return "", &UploadError{Index: index, File: f.Name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.list.indexOfKey(target.key)
	if pos < 0 {
		s.logger.Debug("Discarding upload for removed block", "file", f.Name, "ref", ref)
		return ref, nil
	}
	if s.list[pos].ticket != ticket {
		s.logger.Debug("Discarding superseded upload", "file", f.Name, "ref", ref, "index", pos)
		return ref, nil
	}
	it := s.list[pos]
	if !acceptsSingle(it) {
		s.logger.Debug("Discarding upload for block that changed shape", "file", f.Name, "ref", ref, "block", describe(it))
		return ref, nil
	}
	next, err := s.list.Update(pos, FieldData, bindSingle(it, ref))
	if err != nil {
		return ref, err
	}
	s.list = next
	return ref, nil
}

// SubmitMultiple uploads files concurrently and appends the results, in the
// order the files were given, to the image list of the block at index. The
// append applies to the block's images as they are when the uploads finish.
//
// Any failure returns *UploadError and nothing is appended.
func (s *Session) SubmitMultiple(ctx context.Context, index int, files []File) ([]MediaRef, error) {
	s.mu.Lock()
	if err := checkIndex("submit", index, len(s.list)); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	target := s.list[index]
	if _, ok := target.Data.(MediaRefs); !ok {
		s.mu.Unlock()
		return nil, invariant("submit", "%s has no multi-image slot", describe(target))
	}
	s.mu.Unlock()

	refs := make([]MediaRef, len(files))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for i, f := range files {
		g.Go(func() error {
			ref, err := s.uploader.Upload(gctx, f)
			if err != nil {
				return &UploadError{Index: index, File: f.Name, Err: err}
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pos := s.list.indexOfKey(target.key)
	if pos < 0 {
		s.logger.Debug("Discarding uploads for removed block", "count", len(refs))
		return refs, nil
	}
	current, ok := s.list[pos].Data.(MediaRefs)
	if !ok {
		s.logger.Debug("Discarding uploads for block that changed shape", "block", describe(s.list[pos]))
		return refs, nil
	}
	merged := make(MediaRefs, 0, len(current)+len(refs))
	merged = append(merged, current...)
	merged = append(merged, refs...)
	next, err := s.list.Update(pos, FieldData, merged)
	if err != nil {
		return refs, err
	}
	s.list = next
	return refs, nil
}

func acceptsSingle(it Item) bool {
	switch it.Type {
	case BlockImage, BlockCoverImage, BlockManualDownload:
		return true
	case BlockSpecification:
		return it.SubType == SubTypeImage
	case BlockVideo:
		return it.SubType == SubTypeUpload
	}
	return false
}

func bindSingle(it Item, ref MediaRef) Payload {
	switch it.Type {
	case BlockImage:
		return MediaRefs{ref}
	case BlockManualDownload:
		m, _ := it.Data.(Manual)
		m.File = MediaRef(ref.Name())
		return m
	default:
		return ref
	}
}
