package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SocialLinks groups a user's external profile URLs.
type SocialLinks struct {
	Facebook  string `bson:"facebook" json:"facebook"`
	Twitter   string `bson:"twitter" json:"twitter"`
	LinkedIn  string `bson:"linkedin" json:"linkedin"`
	Instagram string `bson:"instagram" json:"instagram"`
}

// User is a registered account. The password hash and the reset OTP
// fields never leave the server.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password_hash" json:"-"`
	FirstName      string             `bson:"first_name" json:"firstName"`
	LastName       string             `bson:"last_name" json:"lastName"`
	ProfilePicture string             `bson:"profile_picture" json:"profilePicture"`
	Bio            string             `bson:"bio" json:"bio"`
	Location       string             `bson:"location" json:"location"`
	Skills         []string           `bson:"skills" json:"skills"`
	Interests      []string           `bson:"interests" json:"interests"`
	SocialLinks    SocialLinks        `bson:"social_links" json:"socialLinks"`
	IsVerified     bool               `bson:"is_verified" json:"isVerified"`
	ResetOTP       string             `bson:"reset_otp,omitempty" json:"-"`
	ResetOTPExp    time.Time          `bson:"reset_otp_exp,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// UserSummary is the subset of a user attached to events as organizer
// or participant info.
type UserSummary struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Username       string             `bson:"username" json:"username"`
	FirstName      string             `bson:"first_name" json:"firstName"`
	LastName       string             `bson:"last_name" json:"lastName"`
	ProfilePicture string             `bson:"profile_picture" json:"profilePicture"`
}

// AuthView is the user payload returned by register and login.
type AuthView struct {
	ID             primitive.ObjectID `json:"id"`
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	ProfilePicture string             `json:"profilePicture"`
	IsVerified     bool               `json:"isVerified"`
}

// ToAuthView projects the fields exposed after authentication.
func (u *User) ToAuthView() AuthView {
	return AuthView{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		IsVerified:     u.IsVerified,
	}
}

// ToSummary projects the fields embedded in event responses.
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
	}
}
