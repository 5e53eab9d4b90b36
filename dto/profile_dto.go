package dto

import "github.com/olenaliuby/social-media-api/models"

// ProfileDTO is the caller's own profile.
type ProfileDTO struct {
	ID             uint    `json:"id"`
	ProfileImage   *string `json:"profile_image"`
	UserEmail      string  `json:"user_email"`
	Username       string  `json:"username"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	PhoneNumber    *string `json:"phone_number"`
	BirthDate      *string `json:"birth_date"`
	Bio            *string `json:"bio"`
	FollowersCount int64   `json:"followers_count"`
	FollowingCount int64   `json:"following_count"`
}

type ProfileListDTO struct {
	ID           uint    `json:"id"`
	ProfileImage *string `json:"profile_image"`
	FullName     string  `json:"full_name"`
	Username     string  `json:"username"`
	FollowedByMe bool    `json:"followed_by_me"`
}

// FollowEdgeDTO names the other end of a follow edge.
type FollowEdgeDTO struct {
	ProfileID uint   `json:"profile_id"`
	Username  string `json:"username"`
}

type ProfileDetailDTO struct {
	ProfileDTO
	FollowedByMe bool            `json:"followed_by_me"`
	Followers    []FollowEdgeDTO `json:"followers"`
	Following    []FollowEdgeDTO `json:"following"`
}

func Profile(p *models.Profile, url URLFunc) ProfileDTO {
	out := ProfileDTO{
		ID:             p.ID,
		ProfileImage:   mediaURL(url, p.ProfileImage),
		Username:       p.Username,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		PhoneNumber:    p.PhoneNumber,
		Bio:            p.Bio,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
	}
	if p.User != nil {
		out.UserEmail = p.User.Email
	}
	if p.BirthDate != nil {
		d := p.BirthDate.Format(dateLayout)
		out.BirthDate = &d
	}
	return out
}

func ProfileList(profiles []models.Profile, url URLFunc) []ProfileListDTO {
	out := make([]ProfileListDTO, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		out = append(out, ProfileListDTO{
			ID:           p.ID,
			ProfileImage: mediaURL(url, p.ProfileImage),
			FullName:     p.FullName(),
			Username:     p.Username,
			FollowedByMe: p.FollowedByMe,
		})
	}
	return out
}

func ProfileDetail(p *models.Profile, followers, following []models.Follow, url URLFunc) ProfileDetailDTO {
	return ProfileDetailDTO{
		ProfileDTO:   Profile(p, url),
		FollowedByMe: p.FollowedByMe,
		Followers:    Followers(followers),
		Following:    Following(following),
	}
}

// Followers projects edges onto the profiles that follow.
func Followers(edges []models.Follow) []FollowEdgeDTO {
	out := make([]FollowEdgeDTO, 0, len(edges))
	for _, e := range edges {
		row := FollowEdgeDTO{ProfileID: e.FollowerID}
		if e.Follower != nil {
			row.Username = e.Follower.Username
		}
		out = append(out, row)
	}
	return out
}

// Following projects edges onto the followed profiles.
func Following(edges []models.Follow) []FollowEdgeDTO {
	out := make([]FollowEdgeDTO, 0, len(edges))
	for _, e := range edges {
		row := FollowEdgeDTO{ProfileID: e.FollowingID}
		if e.Following != nil {
			row.Username = e.Following.Username
		}
		out = append(out, row)
	}
	return out
}
