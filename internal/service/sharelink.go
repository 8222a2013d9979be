package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/patric-chuzhbe/brainly/internal/models"
)

const shareHashSymbols = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateRandomString(length int) (string, error) {
	var result strings.Builder
	result.Grow(length)

	limit := big.NewInt(int64(len(shareHashSymbols)))
	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		result.WriteByte(shareHashSymbols[randomIndex.Int64()])
	}

	return result.String(), nil
}

// EnableSharing replaces the user's share link with a freshly allocated one and returns its hash.
//
// The old link is deleted before the new one is inserted and the two steps are not atomic:
// concurrent calls for the same user may both insert.
func (s *Service) EnableSharing(ctx context.Context, userID string) (string, error) {
	if err := s.db.DeleteUserShareLinks(ctx, userID); err != nil {
		return "", fmt.Errorf("in internal/service/sharelink.go/EnableSharing(): error while `s.db.DeleteUserShareLinks()` calling: %w", err)
	}

	for i := 0; i < s.shareHashMaxAttempts; i++ {
		hash, err := s.randomString(s.shareHashLength)
		if err != nil {
			return "", fmt.Errorf("in internal/service/sharelink.go/EnableSharing(): error while `s.randomString()` calling: %w", err)
		}

		exists, err := s.db.IsShareHashExists(ctx, hash)
		if err != nil {
			return "", fmt.Errorf("in internal/service/sharelink.go/EnableSharing(): error while `s.db.IsShareHashExists()` calling: %w", err)
		}
		if exists {
			continue
		}

		err = s.db.InsertShareLink(ctx, &models.ShareLink{Hash: hash, UserID: userID})
		if errors.Is(err, models.ErrDuplicateShareHash) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("in internal/service/sharelink.go/EnableSharing(): error while `s.db.InsertShareLink()` calling: %w", err)
		}

		return hash, nil
	}

	return "", ErrExhaustedRetries
}

// DisableSharing removes the user's share link. Calling it without a link is not an error.
func (s *Service) DisableSharing(ctx context.Context, userID string) error {
	return s.db.DeleteUserShareLinks(ctx, userID)
}

// ResolveShareLink returns the owner's name and full content list for a public share hash.
func (s *Service) ResolveShareLink(ctx context.Context, hash string) (models.SharedContentResponse, error) {
	link, found, err := s.db.FindShareLinkByHash(ctx, hash)
	if err != nil {
		return models.SharedContentResponse{}, err
	}
	if !found {
		return models.SharedContentResponse{}, ErrShareLinkNotFound
	}

	owner, found, err := s.db.GetUserByID(ctx, link.UserID)
	if err != nil {
		return models.SharedContentResponse{}, err
	}
	if !found {
		return models.SharedContentResponse{}, ErrShareLinkNotFound
	}

	contents, err := s.db.GetUserContents(ctx, link.UserID)
	if err != nil {
		return models.SharedContentResponse{}, err
	}

	return models.SharedContentResponse{
		Username: owner.Name,
		Content:  contents,
	}, nil
}
