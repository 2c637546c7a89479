package auth

import (
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/features/user"
	"github.com/eduflow/eduflow-server-go/internal/utils/jwt"
)

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     *string
	City      *string
	Password  string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

type TokenConfig struct {
	JWTSecret          string
	JWTRefreshSecret   string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// DefaultTokens builds the standard token configuration: short-lived access
// tokens, week-long refresh tokens.
func DefaultTokens(jwtSecret, jwtRefreshSecret string) TokenConfig {
	return TokenConfig{
		JWTSecret:          jwtSecret,
		JWTRefreshSecret:   jwtRefreshSecret,
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Register creates a regular user account. Moderator and admin flags are
// never set through registration; scripts and admin edits handle those.
func Register(db *gorm.DB, input RegisterInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if !emailRegex.MatchString(input.Email) {
		return nil, ErrInvalidEmail
	}

	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}

	newUser, err := user.Create(db, user.CreateInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		City:      input.City,
		Password:  input.Password,
	})
	if err != nil {
		return nil, err
	}

	return issueTokens(db, &newUser, cfg)
}

// Login authenticates a user and returns tokens. A successful login records
// last_login, which the inactivity sweep keys off.
func Login(db *gorm.DB, input LoginInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	usr, err := user.GetByEmail(db, input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !usr.ComparePassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	if !usr.Active {
		return nil, ErrInactiveAccount
	}

	now := time.Now()
	if err := user.TouchLastLogin(db, usr.ID, now); err != nil {
		return nil, err
	}
	usr.LastLogin = &now

	return issueTokens(db, &usr, cfg)
}

// Logout invalidates the stored refresh token. The handler additionally
// denylists the presented access token until its expiry.
func Logout(db *gorm.DB, accessToken string, cfg TokenConfig) (*jwt.Claims, error) {
	claims, err := jwt.VerifyToken(accessToken, cfg.JWTSecret)
	if err != nil {
		// An expired token still identifies whose refresh token to clear.
		claims, err = jwt.DecodeWithoutVerify(accessToken)
		if err != nil {
			return nil, ErrInvalidToken
		}
	}

	if err := db.Model(&user.User{}).
		Where("id = ?", claims.UserID).
		Update("refresh_token", nil).Error; err != nil {
		return nil, err
	}

	return claims, nil
}

// RefreshAccessToken rotates the token pair using a valid refresh token.
func RefreshAccessToken(db *gorm.DB, refreshToken string, cfg TokenConfig) (*jwt.TokenPair, error) {
	claims, err := jwt.VerifyToken(refreshToken, cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return nil, err
	}

	if usr.RefreshToken == nil || *usr.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&user.User{}).
		Where("id = ?", usr.ID).
		Update("refresh_token", newRefreshToken).Error; err != nil {
		return nil, err
	}

	return &jwt.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func issueTokens(db *gorm.DB, usr *user.User, cfg TokenConfig) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&user.User{}).
		Where("id = ?", usr.ID).
		Update("refresh_token", refreshToken).Error; err != nil {
		return nil, err
	}
	usr.RefreshToken = &refreshToken

	return &AuthResponse{
		User:         usr,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
