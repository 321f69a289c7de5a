package services

import (
	"context"
	"errors"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"
	"schoolhub/internal/core/domain"

	"gorm.io/gorm"
)

// checkSchoolAccess loads the caller's stored profile and verifies it
// belongs to the school named in the request. Authorization is
// re-derived per request from the database, not trusted from token
// claims beyond the caller's identity.
func checkSchoolAccess(ctx context.Context, profileRepo repositories.ProfileRepository, userID, schoolID uint) (*models.Profile, error) {
	profile, err := profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	if profile.SchoolID != schoolID {
		return nil, domain.ErrSchoolMismatch
	}

	return profile, nil
}
