package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/ids"
	"github.com/diya-thabet/hirfa/internal/media/sniffer"
	"github.com/diya-thabet/hirfa/internal/media/svg"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/security"
)

const EventMediaIngest = "media.ingest"

type ObjectStorage interface {
	Bucket() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	Stat(ctx context.Context, key string) (int64, error)
	PublicURL(key string) string
}

type MediaService struct {
	media    MediaStore
	store    ObjectStorage
	events   EventPublisher
	secret   string
	maxBytes int64
	log      zerolog.Logger
}

func NewMediaService(media MediaStore, store ObjectStorage, events EventPublisher, secret string, maxBytes int64, log zerolog.Logger) *MediaService {
	return &MediaService{media: media, store: store, events: events, secret: secret, maxBytes: maxBytes, log: log}
}

type UploadInput struct {
	Owner        models.User
	File         io.Reader
	DeclaredType string
}

// Upload validates the file by content, stores it and queues it for ingest.
// The returned URL is usable right away as a story or review photo.
func (s *MediaService) Upload(ctx context.Context, input UploadInput) (models.Media, error) {
	if input.File == nil {
		return models.Media{}, &ValidationError{Fields: map[string]string{"file": "is required"}}
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.maxBytes+1))
	if err != nil {
		return models.Media{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return models.Media{}, &ValidationError{Fields: map[string]string{"file": "is empty"}}
	}
	if int64(len(data)) > s.maxBytes {
		return models.Media{}, &ValidationError{Fields: map[string]string{"file": fmt.Sprintf("exceeds %d bytes", s.maxBytes)}}
	}

	result, err := sniffer.DetectHead(data[:min(len(data), 512)])
	if err != nil {
		if errors.Is(err, sniffer.ErrUnknownType) {
			return models.Media{}, &ValidationError{Fields: map[string]string{"file": "unsupported media type"}}
		}
		return models.Media{}, fmt.Errorf("detect type: %w", err)
	}
	if input.DeclaredType != "" && input.DeclaredType != "application/octet-stream" && input.DeclaredType != result.MIME {
		return models.Media{}, &ValidationError{Fields: map[string]string{
			"file": fmt.Sprintf("declared %s but content is %s", input.DeclaredType, result.MIME),
		}}
	}

	if result.Type == sniffer.TypeSVG {
		data, err = svg.Sanitize(data)
		if err != nil {
			return models.Media{}, &ValidationError{Fields: map[string]string{"file": err.Error()}}
		}
	}

	mediaID := ids.New()
	objectKey := path.Join(time.Now().UTC().Format("2006/01/02"), mediaID+"."+string(result.Type))

	size, err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return models.Media{}, err
	}

	media := models.Media{
		ID:        mediaID,
		OwnerID:   input.Owner.ID,
		Bucket:    s.store.Bucket(),
		ObjectKey: objectKey,
		Format:    string(result.Type),
		SizeBytes: size,
		Status:    models.MediaStatusProcessing,
		Signature: s.sign(mediaID, input.Owner.ID, objectKey),
		URL:       s.store.PublicURL(objectKey),
	}
	if err := s.media.Create(ctx, &media); err != nil {
		return models.Media{}, fmt.Errorf("save metadata: %w", err)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, EventMediaIngest, map[string]any{"mediaId": media.ID}); err != nil {
			s.log.Warn().Err(err).Str("media_id", media.ID).Msg("enqueue ingest failed")
		}
	}
	return media, nil
}

// Ingest checks a stored upload against its signature and object, then marks it ready.
func (s *MediaService) Ingest(ctx context.Context, mediaID string) error {
	media, err := s.media.GetByID(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("media %s: %w", mediaID, MapRepositoryError(err))
	}
	if media.Status == models.MediaStatusReady {
		return nil
	}
	if !security.VerifyResource(s.secret, media.Signature, media.ID, strconv.FormatInt(media.OwnerID, 10), media.ObjectKey) {
		return fmt.Errorf("media %s: signature mismatch", mediaID)
	}
	if _, err := s.store.Stat(ctx, media.ObjectKey); err != nil {
		return err
	}
	return s.media.UpdateStatus(ctx, media.ID, models.MediaStatusReady)
}

func (s *MediaService) sign(mediaID string, ownerID int64, objectKey string) []byte {
	return security.SignResource(s.secret, mediaID, strconv.FormatInt(ownerID, 10), objectKey)
}
