package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/olenaliuby/social-media-api/apperr"
	"github.com/olenaliuby/social-media-api/models"
	"github.com/olenaliuby/social-media-api/repositories"
	"github.com/olenaliuby/social-media-api/storage"
	"github.com/olenaliuby/social-media-api/validation"
)

type ProfileService struct {
	profiles repositories.ProfileRepository
	media    MediaStore
}

func NewProfileService(profiles repositories.ProfileRepository, media MediaStore) *ProfileService {
	return &ProfileService{profiles: profiles, media: media}
}

// ProfileUpdate is a partial update. Nil fields are left alone, and so is
// the stored image when Image is nil or has no file. The Clear flags set
// the nullable fields back to NULL and win over a value.
type ProfileUpdate struct {
	Username    *string
	FirstName   *string
	LastName    *string
	Bio         *string
	BirthDate   *time.Time
	PhoneNumber *string
	Image       *Upload

	ClearBio         bool
	ClearBirthDate   bool
	ClearPhoneNumber bool
}

// ProfileDetail is a profile with its materialized follow edges.
type ProfileDetail struct {
	Profile   *models.Profile
	Followers []models.Follow
	Following []models.Follow
}

func (s *ProfileService) Me(ctx context.Context, userID uint) (*models.Profile, error) {
	return callerProfile(ctx, s.profiles, userID)
}

func (s *ProfileService) UpdateMe(ctx context.Context, userID uint, in ProfileUpdate) (*models.Profile, error) {
	profile, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	v := validation.Violations{}
	if in.Username != nil {
		validation.Required("username", *in.Username, v)
		validation.MaxLength("username", *in.Username, 50, v)
		profile.Username = *in.Username
	}
	if in.FirstName != nil {
		validation.MaxLength("first_name", *in.FirstName, 50, v)
		profile.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		validation.MaxLength("last_name", *in.LastName, 50, v)
		profile.LastName = *in.LastName
	}
	switch {
	case in.ClearPhoneNumber:
		profile.PhoneNumber = nil
	case in.PhoneNumber != nil:
		validation.MaxLength("phone_number", *in.PhoneNumber, 50, v)
		profile.PhoneNumber = in.PhoneNumber
	}
	switch {
	case in.ClearBio:
		profile.Bio = nil
	case in.Bio != nil:
		profile.Bio = in.Bio
	}
	switch {
	case in.ClearBirthDate:
		profile.BirthDate = nil
	case in.BirthDate != nil:
		d := in.BirthDate.UTC().Truncate(24 * time.Hour)
		profile.BirthDate = &d
	}
	if !v.Empty() {
		return nil, apperr.Validation(v)
	}

	if !in.Image.empty() {
		key, err := saveImage(ctx, s.media, storage.ProfileImages, in.Image, "profile_image")
		if err != nil {
			return nil, err
		}
		profile.ProfileImage = &key
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.profiles.FindByUserID(ctx, userID)
}

// DeleteMe removes the caller's profile, everything it owns and the identity.
func (s *ProfileService) DeleteMe(ctx context.Context, userID uint) error {
	profile, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return err
	}
	if err := s.profiles.DeleteWithOwner(ctx, profile); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "profile_id": profile.ID}).Info("Profile deleted")
	return nil
}

func (s *ProfileService) List(ctx context.Context, userID uint, filter repositories.ProfileFilter) ([]models.Profile, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.List(ctx, filter, me.ID)
}

func (s *ProfileService) Detail(ctx context.Context, userID, id uint) (*ProfileDetail, error) {
	me, err := callerProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByID(ctx, id, me.ID)
	if err != nil {
		return nil, err
	}
	followers, err := s.profiles.Followers(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.profiles.Following(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileDetail{Profile: profile, Followers: followers, Following: following}, nil
}

func saveImage(ctx context.Context, media MediaStore, dir string, up *Upload, field string) (string, error) {
	body, err := storage.SniffImage(up.Body)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return "", apperr.Validation(map[string]string{
				field: "Upload a valid image. The file you uploaded was either not an image or a corrupted image.",
			})
		}
		return "", err
	}
	key := storage.UploadPath(dir, up.Filename)
	if err := media.Save(ctx, key, body); err != nil {
		return "", err
	}
	return key, nil
}
