package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deepthiduddupudi31/community-serve/config"
	"github.com/deepthiduddupudi31/community-serve/middleware"
	"github.com/deepthiduddupudi31/community-serve/models"
	"github.com/deepthiduddupudi31/community-serve/utils"
)

// RegisterInput is the request body for registration.
type RegisterInput struct {
	Username  string `json:"username" binding:"required,max=30"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"omitempty,max=50"`
	LastName  string `json:"lastName" binding:"omitempty,max=50"`
}

// LoginInput is the request body for login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput whitelists the editable profile fields. Anything
// outside this set fails the whole request.
type UpdateProfileInput struct {
	FirstName      *string             `json:"firstName"`
	LastName       *string             `json:"lastName"`
	Bio            *string             `json:"bio"`
	Location       *string             `json:"location"`
	Skills         *[]string           `json:"skills"`
	Interests      *[]string           `json:"interests"`
	SocialLinks    *models.SocialLinks `json:"socialLinks"`
	ProfilePicture *string             `json:"profilePicture"`
}

// ForgotPasswordInput requests a reset OTP.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordInput redeems a reset OTP.
type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// currentUserID reads the authenticated user id set by the auth
// middleware and parses it into an ObjectID.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	uidIf, exists := c.Get(middleware.ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "user not authenticated"})
		return primitive.NilObjectID, false
	}
	hex, _ := uidIf.(string)
	userID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "user not authenticated"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// serverError logs the cause and answers with a generic message.
func serverError(c *gin.Context, msg string, err error) {
	slog.Error(msg, "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
}

func jwtTTL() time.Duration {
	return time.Duration(config.App.JWTExpHours) * time.Hour
}

// registerConflictMessage says which unique field an existing account
// collides with. Email wins when both match, mirroring the lookup
// order of the duplicate check.
func registerConflictMessage(existing *models.User, email, username string) string {
	if existing.Email == email {
		return "Email already registered"
	}
	return "Username already taken"
}

// Register creates a new user account and issues a token.
func Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)
	if len(username) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username must be at least 3 characters"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// duplicate check, distinguishing which field conflicted
	var existing models.User
	err := config.Users().FindOne(ctx, bson.M{
		"$or": []bson.M{{"email": email}, {"username": username}},
	}).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": registerConflictMessage(&existing, email, username)})
		return
	}
	if err != mongo.ErrNoDocuments {
		serverError(c, "Server error during registration", err)
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		serverError(c, "Server error during registration", err)
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  hash,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Skills:    []string{},
		Interests: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := config.Users().InsertOne(ctx, user); err != nil {
		// unique index may still fire on a racing registration
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email or username already taken"})
			return
		}
		serverError(c, "Server error during registration", err)
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), config.App.JWTSecret, jwtTTL())
	if err != nil {
		serverError(c, "Server error during registration", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user.ToAuthView(),
	})
}

// Login authenticates by email and password. Unknown email and wrong
// password collapse into the same response.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := config.Users().FindOne(ctx, bson.M{"email": strings.ToLower(input.Email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}
	if err != nil {
		serverError(c, "Server error during login", err)
		return
	}

	if err := utils.CheckPassword(user.Password, input.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), config.App.JWTSecret, jwtTTL())
	if err != nil {
		serverError(c, "Server error during login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user.ToAuthView(),
	})
}

// Me returns the authenticated user's full profile.
func Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := config.Users().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		serverError(c, "Server error", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile applies a partial update to the whitelisted profile
// fields. A body containing any other field is rejected wholesale.
func UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	var input UpdateProfileInput
	if err := dec.Decode(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid updates"})
		return
	}

	if msg, ok := validateProfileInput(&input); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
		return
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if input.FirstName != nil {
		set["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		set["last_name"] = *input.LastName
	}
	if input.Bio != nil {
		set["bio"] = *input.Bio
	}
	if input.Location != nil {
		set["location"] = *input.Location
	}
	if input.Skills != nil {
		set["skills"] = *input.Skills
	}
	if input.Interests != nil {
		set["interests"] = *input.Interests
	}
	if input.SocialLinks != nil {
		set["social_links"] = *input.SocialLinks
	}
	if input.ProfilePicture != nil {
		set["profile_picture"] = *input.ProfilePicture
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := config.Users().FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		serverError(c, "Server error during profile update", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// validateProfileInput enforces the same field limits registration
// applies, so the relaxed-update inconsistency of older builds is gone.
func validateProfileInput(in *UpdateProfileInput) (string, bool) {
	if in.FirstName != nil && len(*in.FirstName) > 50 {
		return "First name must be at most 50 characters", false
	}
	if in.LastName != nil && len(*in.LastName) > 50 {
		return "Last name must be at most 50 characters", false
	}
	if in.Bio != nil && len(*in.Bio) > 500 {
		return "Bio must be at most 500 characters", false
	}
	if in.Location != nil && len(*in.Location) > 100 {
		return "Location must be at most 100 characters", false
	}
	return "", true
}

// ForgotPassword stores a hashed OTP for the account and mails it.
// The response never reveals whether the account exists.
func ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	genericMsg := gin.H{"message": "If that email exists, an OTP has been sent"}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := config.Users().FindOne(ctx, bson.M{"email": strings.ToLower(input.Email)}).Decode(&user); err != nil {
		c.JSON(http.StatusOK, genericMsg)
		return
	}

	otp, err := utils.GenerateOTP(6)
	if err != nil {
		serverError(c, "Could not generate OTP", err)
		return
	}
	hashedOTP, err := utils.HashPassword(otp)
	if err != nil {
		serverError(c, "Could not generate OTP", err)
		return
	}

	ttl := config.App.OTPTTLMin

	update := bson.M{"$set": bson.M{
		"reset_otp":     hashedOTP,
		"reset_otp_exp": time.Now().Add(time.Duration(ttl) * time.Minute),
	}}
	if _, err := config.Users().UpdateByID(ctx, user.ID, update); err != nil {
		serverError(c, "Could not store OTP", err)
		return
	}

	mailer := &utils.Mailer{
		Host:     config.App.SMTPHost,
		Port:     config.App.SMTPPort,
		Username: config.App.SMTPUser,
		Password: config.App.SMTPPass,
	}

	if !mailer.Configured() {
		// dev fallback only: the plaintext OTP never reaches logs
		// once SMTP is set up
		slog.Warn("smtp not configured, OTP logged for dev", "email", user.Email, "otp", otp)
	} else {
		subject := "Your password reset OTP"
		body := "Your OTP is: " + otp + "\nThis code expires in " + strconv.Itoa(ttl) + " minutes."
		if err := mailer.Send(user.Email, subject, body); err != nil {
			slog.Error("mail delivery failed", "email", user.Email, "error", err)
		}
	}

	c.JSON(http.StatusOK, genericMsg)
}

// ResetPassword verifies the OTP and replaces the password hash.
func ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := config.Users().FindOne(ctx, bson.M{"email": strings.ToLower(input.Email)}).Decode(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid OTP or email"})
		return
	}

	if user.ResetOTP == "" || user.ResetOTPExp.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired OTP"})
		return
	}

	if err := utils.CheckPassword(user.ResetOTP, input.OTP); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid OTP"})
		return
	}

	newHash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		serverError(c, "Could not reset password", err)
		return
	}

	update := bson.M{
		"$set":   bson.M{"password_hash": newHash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_otp": "", "reset_otp_exp": ""},
	}
	if _, err := config.Users().UpdateByID(ctx, user.ID, update); err != nil {
		serverError(c, "Could not reset password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}
