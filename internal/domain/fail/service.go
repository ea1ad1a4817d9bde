package fail

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/badge"
	"github.com/faildaily/faildaily-api/internal/pkg/imaging"
	"github.com/faildaily/faildaily-api/internal/pkg/logger"
	"github.com/faildaily/faildaily-api/internal/pkg/storage"
)

// BadgeEvaluator re-runs badge unlocking for a user
type BadgeEvaluator interface {
	EvaluateUser(ctx context.Context, userID uuid.UUID) ([]*badge.Definition, error)
}

// Service handles fail and comment business logic
type Service struct {
	repo          Repository
	badges        BadgeEvaluator
	storage       storage.Storage
	processor     *imaging.Processor
	maxImageBytes int64
	now           func() time.Time
}

// NewService creates fail service. store may be nil when image storage is
// not configured.
func NewService(repo Repository, badges BadgeEvaluator, store storage.Storage, processor *imaging.Processor, maxImageBytes int64) *Service {
	return &Service{
		repo:          repo,
		badges:        badges,
		storage:       store,
		processor:     processor,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

// Create publishes a fail and re-evaluates the author's badges
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, req *CreateFailRequest) (*CreateFailResponse, error) {
	now := s.now()
	f := &Fail{
		ID:          uuid.New(),
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Category:    Category(req.Category),
		IsAnonymous: req.IsAnonymous,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	unlocked, err := s.badges.EvaluateUser(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("evaluate author badges: %w", err)
	}

	saved, err := s.repo.GetByID(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, ErrFailNotFound
	}

	return &CreateFailResponse{
		Fail:          s.toResponse(saved, authorID),
		NewlyUnlocked: badgeIDs(unlocked),
	}, nil
}

// Get returns a fail. Hidden fails are visible only to their author and
// moderators.
func (s *Service) Get(ctx context.Context, viewerID, failID uuid.UUID, moderator bool) (*FailResponse, error) {
	f, err := s.visible(ctx, viewerID, failID, moderator)
	if err != nil {
		return nil, err
	}
	return s.toResponse(f, viewerID), nil
}

// List returns the public feed, newest first
func (s *Service) List(ctx context.Context, viewerID uuid.UUID, filter *ListFilter) ([]*FailResponse, int, error) {
	fails, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*FailResponse, len(fails))
	for i, f := range fails {
		out[i] = s.toResponse(f, viewerID)
	}
	return out, total, nil
}

// ListMine returns every fail the user authored, including hidden ones
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*FailResponse, int, error) {
	return s.List(ctx, userID, &ListFilter{
		AuthorID:      userID,
		IncludeHidden: true,
		Limit:         limit,
		Offset:        offset,
	})
}

// AddComment posts a comment on a visible fail and re-evaluates the
// commenter's badges
func (s *Service) AddComment(ctx context.Context, authorID, failID uuid.UUID, req *CreateCommentRequest) (*CreateCommentResponse, error) {
	f, err := s.repo.GetByID(ctx, failID)
	if err != nil {
		return nil, err
	}
	if f == nil || f.IsHidden() {
		return nil, ErrFailNotFound
	}

	c := &Comment{
		ID:        uuid.New(),
		FailID:    failID,
		AuthorID:  authorID,
		Content:   req.Content,
		Status:    "pending",
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	unlocked, err := s.badges.EvaluateUser(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("evaluate commenter badges: %w", err)
	}

	return &CreateCommentResponse{
		Comment:       NewCommentResponse(c),
		NewlyUnlocked: badgeIDs(unlocked),
	}, nil
}

// ListComments returns the comments of a fail the viewer can see
func (s *Service) ListComments(ctx context.Context, viewerID, failID uuid.UUID, moderator bool) ([]*CommentResponse, error) {
	if _, err := s.visible(ctx, viewerID, failID, moderator); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, failID, viewerID, moderator)
	if err != nil {
		return nil, err
	}
	out := make([]*CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = NewCommentResponse(c)
	}
	return out, nil
}

// AttachImage resizes the uploaded image, stores it with a thumbnail and
// replaces any previous image of the fail
func (s *Service) AttachImage(ctx context.Context, userID, failID uuid.UUID, reader io.Reader) (*FailResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	f, err := s.repo.GetByID(ctx, failID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFailNotFound
	}
	if f.AuthorID != userID {
		return nil, ErrNotFailAuthor
	}

	data, _, err := storage.ReadImage(reader, s.maxImageBytes)
	if err != nil {
		return nil, err
	}
	img, err := s.processor.Process(data)
	if err != nil {
		return nil, err
	}

	originalKey, thumbKey := imaging.FailImageKeys(failID, img.ContentType)
	if err := s.storage.Put(ctx, originalKey, bytes.NewReader(img.Original), img.ContentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(img.Thumbnail), img.ContentType); err != nil {
		s.removeObjects(ctx, originalKey)
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	if err := s.repo.UpdateImageKey(ctx, failID, sql.NullString{String: originalKey, Valid: true}); err != nil {
		s.removeObjects(ctx, originalKey, thumbKey)
		return nil, err
	}

	if f.ImageKey.Valid {
		s.removeObjects(ctx, f.ImageKey.String, imaging.ThumbKey(f.ImageKey.String))
	}

	logger.FromContext(ctx).Info().
		Str("fail_id", failID.String()).
		Str("key", originalKey).
		Int("width", img.Width).
		Int("height", img.Height).
		Msg("Fail image stored")

	f.ImageKey = sql.NullString{String: originalKey, Valid: true}
	return s.toResponse(f, userID), nil
}

func (s *Service) visible(ctx context.Context, viewerID, failID uuid.UUID, moderator bool) (*Fail, error) {
	f, err := s.repo.GetByID(ctx, failID)
	if err != nil {
		return nil, err
	}
	if f == nil || !f.VisibleTo(viewerID, moderator) {
		return nil, ErrFailNotFound
	}
	return f, nil
}

// removeObjects deletes stored objects, logging failures
func (s *Service) removeObjects(ctx context.Context, keys ...string) {
	for _, key := range keys {
		exists, err := s.storage.Exists(ctx, key)
		if err == nil && !exists {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to delete image object")
		}
	}
}

func (s *Service) toResponse(f *Fail, viewerID uuid.UUID) *FailResponse {
	resp := &FailResponse{
		ID:            f.ID,
		AuthorName:    f.AuthorName,
		Title:         f.Title,
		Description:   f.Description,
		Category:      f.Category,
		IsAnonymous:   f.IsAnonymous,
		Status:        f.Status,
		CommentCount:  f.CommentCnt,
		ReactionCount: f.ReactionCnt,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
	if !f.IsAnonymous || f.AuthorID == viewerID {
		id := f.AuthorID
		resp.AuthorID = &id
	} else {
		resp.AuthorName = anonymousName
	}
	if f.ImageKey.Valid && s.storage != nil {
		resp.ImageURL = s.storage.GetURL(f.ImageKey.String)
		resp.ThumbnailURL = s.storage.GetURL(imaging.ThumbKey(f.ImageKey.String))
	}
	return resp
}

func badgeIDs(defs []*badge.Definition) []string {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}
