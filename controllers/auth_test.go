package controllers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/deepthiduddupudi31/community-serve/models"
)

func TestRegister_RejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/register", Register)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing email", `{"username":"sam","password":"secret1"}`},
		{"missing password", `{"username":"sam","email":"sam@example.com"}`},
		{"bad email", `{"username":"sam","email":"not-an-email","password":"secret1"}`},
		{"short username", `{"username":"ab","email":"sam@example.com","password":"secret1"}`},
		{"whitespace-padded short username", `{"username":"  a ","email":"sam@example.com","password":"secret1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/register", Register)

	w := perform(r, http.MethodPost, "/api/auth/register",
		`{"username":"sam","email":"sam@example.com","password":"12345"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, strings.ToLower(w.Body.String()), "min")
}

func TestRegister_UsernameValidatedAfterTrimming(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/register", Register)

	// 4 raw characters but only 1 after trimming
	w := perform(r, http.MethodPost, "/api/auth/register",
		`{"username":"  a ","email":"sam@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 3 characters")
}

func TestRegisterConflictMessage(t *testing.T) {
	tests := []struct {
		name     string
		existing models.User
		want     string
	}{
		{
			"email conflict",
			models.User{Email: "sam@example.com", Username: "someoneelse"},
			"Email already registered",
		},
		{
			"username conflict",
			models.User{Email: "other@example.com", Username: "sam"},
			"Username already taken",
		},
		{
			"both conflict, email named",
			models.User{Email: "sam@example.com", Username: "sam"},
			"Email already registered",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := registerConflictMessage(&tt.existing, "sam@example.com", "sam")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogin_RejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/login", Login)

	w := perform(r, http.MethodPost, "/api/auth/login", `{"email":"sam@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfile_RejectsUnknownFieldWholesale(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/api/auth/profile", injectUser(testUserID()), UpdateProfile)

	// username is outside the whitelist; the whole request fails and
	// no part of it is applied
	w := perform(r, http.MethodPut, "/api/auth/profile",
		`{"bio":"volunteer","username":"newname"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid updates")
}

func TestUpdateProfile_RejectsEmailChange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/api/auth/profile", injectUser(testUserID()), UpdateProfile)

	w := perform(r, http.MethodPut, "/api/auth/profile", `{"email":"new@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfile_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/api/auth/profile", UpdateProfile) // no user in context

	w := perform(r, http.MethodPut, "/api/auth/profile", `{"bio":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidateProfileInput_Limits(t *testing.T) {
	long := strings.Repeat("x", 501)
	input := UpdateProfileInput{Bio: &long}
	msg, ok := validateProfileInput(&input)
	assert.False(t, ok)
	assert.Contains(t, msg, "Bio")

	shortBio := "community volunteer"
	input = UpdateProfileInput{Bio: &shortBio}
	_, ok = validateProfileInput(&input)
	assert.True(t, ok)

	longName := strings.Repeat("y", 51)
	input = UpdateProfileInput{FirstName: &longName}
	_, ok = validateProfileInput(&input)
	assert.False(t, ok)

	longLoc := strings.Repeat("z", 101)
	input = UpdateProfileInput{Location: &longLoc}
	_, ok = validateProfileInput(&input)
	assert.False(t, ok)
}

func TestForgotPassword_RejectsBadEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/forgot-password", ForgotPassword)

	w := perform(r, http.MethodPost, "/api/auth/forgot-password", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetPassword_RejectsShortPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/reset-password", ResetPassword)

	w := perform(r, http.MethodPost, "/api/auth/reset-password",
		`{"email":"sam@example.com","otp":"123456","newPassword":"12345"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
