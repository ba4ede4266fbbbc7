package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/carteira/carteira-backend/internal/domain"
	"github.com/carteira/carteira-backend/internal/repository/storage"
)

const (
	MaxReceiptSize   = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth  = 50
	MinReceiptHeight = 50
	ThumbnailWidth   = 200
	JPEGQuality      = 85

	// PresignExpiry is how long receipt download links stay valid
	PresignExpiry = 15 * time.Minute
)

var (
	ErrReceiptTooLarge    = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat      = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrReceiptTooSmall    = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidReceiptData = errors.New("invalid image data")
	ErrStorageDisabled    = errors.New("receipt storage not configured")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptURLs contains presigned download links for a receipt
type ReceiptURLs struct {
	OriginalURL  string `json:"originalUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// ReceiptService handles receipt image processing and storage
type ReceiptService struct {
	entryRepo   domain.EntryRepository
	receiptRepo domain.ReceiptRepository
	store       storage.ReceiptRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	entryRepo domain.EntryRepository,
	receiptRepo domain.ReceiptRepository,
	store storage.ReceiptRepository,
) *ReceiptService {
	return &ReceiptService{
		entryRepo:   entryRepo,
		receiptRepo: receiptRepo,
		store:       store,
	}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured)
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// validateAndDecode validates the image and returns the decoded image
func (s *ReceiptService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, ErrReceiptTooSmall
	}

	return img, nil
}

// Upload attaches a receipt image to an entry, storing the original plus a
// thumbnail. An existing receipt on the entry is replaced.
func (s *ReceiptService) Upload(ctx context.Context, userID, entryID uuid.UUID, data []byte, filename string) (*domain.Receipt, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageDisabled
	}

	if _, err := s.entryRepo.GetByID(userID, entryID); err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	// Replace any previous receipt's objects
	if old, err := s.receiptRepo.GetByEntry(userID, entryID); err == nil {
		s.cleanupObjects(ctx, old.OriginalPath, old.ThumbnailPath)
	}

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"original", 0}, // 0 means keep original size
		{"thumb", ThumbnailWidth},
	}

	paths := make(map[string]string)
	for _, variant := range variants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			// Resize maintaining aspect ratio
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := storage.GenerateObjectPath(userID, entryID, variant.name, ".jpg")
		path, err := s.store.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
		if err != nil {
			s.cleanupObjects(ctx, paths["original"], paths["thumb"])
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		paths[variant.name] = path
	}

	receipt := &domain.Receipt{
		EntryID:       entryID,
		UserID:        userID,
		OriginalPath:  paths["original"],
		ThumbnailPath: paths["thumb"],
	}
	if err := s.receiptRepo.Save(receipt); err != nil {
		s.cleanupObjects(ctx, receipt.OriginalPath, receipt.ThumbnailPath)
		return nil, err
	}
	return receipt, nil
}

// URLs returns presigned download links for an entry's receipt
func (s *ReceiptService) URLs(ctx context.Context, userID, entryID uuid.UUID) (*ReceiptURLs, error) {
	if !s.IsEnabled() {
		return nil, ErrStorageDisabled
	}

	receipt, err := s.receiptRepo.GetByEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	original, err := s.store.GeneratePresignedURL(ctx, receipt.OriginalPath, PresignExpiry)
	if err != nil {
		return nil, err
	}
	thumbnail, err := s.store.GeneratePresignedURL(ctx, receipt.ThumbnailPath, PresignExpiry)
	if err != nil {
		return nil, err
	}

	return &ReceiptURLs{OriginalURL: original, ThumbnailURL: thumbnail}, nil
}

// Delete removes an entry's receipt record and its stored objects
func (s *ReceiptService) Delete(ctx context.Context, userID, entryID uuid.UUID) error {
	if !s.IsEnabled() {
		return ErrStorageDisabled
	}

	receipt, err := s.receiptRepo.GetByEntry(userID, entryID)
	if err != nil {
		return err
	}

	if err := s.receiptRepo.Delete(userID, entryID); err != nil {
		return err
	}

	s.cleanupObjects(ctx, receipt.OriginalPath, receipt.ThumbnailPath)
	return nil
}

// cleanupObjects deletes stored objects, logging failures instead of
// propagating them
func (s *ReceiptService) cleanupObjects(ctx context.Context, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.store.Delete(ctx, path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to delete receipt object")
		}
	}
}
