package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/internal/policy"
	"github.com/eduflow/eduflow-server-go/pkg/pagination"
	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// User represents a platform account. Email is the login identifier.
type User struct {
	types.BaseModel

	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FirstName    string     `gorm:"type:varchar(50);column:first_name" json:"firstName"`
	LastName     string     `gorm:"type:varchar(50);column:last_name" json:"lastName"`
	Phone        *string    `gorm:"type:varchar(35)" json:"phone,omitempty"`
	City         *string    `gorm:"type:varchar(100)" json:"city,omitempty"`
	AvatarURL    *string    `gorm:"type:text;column:avatar_url" json:"avatarUrl,omitempty"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	IsStaff      bool       `gorm:"type:boolean;not null;default:false;column:is_staff" json:"-"`
	IsSuperuser  bool       `gorm:"type:boolean;not null;default:false;column:is_superuser" json:"-"`
	IsModerator  bool       `gorm:"type:boolean;not null;default:false;column:is_moderator" json:"-"`
	Active       bool       `gorm:"type:boolean;not null;default:true;column:is_active;index" json:"isActive"`
	LastLogin    *time.Time `gorm:"column:last_login;index" json:"lastLogin,omitempty"`
	RefreshToken *string    `gorm:"type:text;column:refresh_token" json:"-"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// Role resolves the account flags to the authorization role.
func (u *User) Role() types.Role {
	return policy.Resolve(u.IsStaff, u.IsSuperuser, u.IsModerator)
}

// Profile is the full serialization a user sees of their own account.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     *string    `json:"phone,omitempty"`
	City      *string    `json:"city,omitempty"`
	AvatarURL *string    `json:"avatarUrl,omitempty"`
	Role      types.Role `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IsSelf    bool       `json:"isSelf"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PublicProfile is the reduced serialization shown to other users. Contact
// details and login history stay private.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	City      *string   `json:"city,omitempty"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	IsSelf    bool      `json:"isSelf"`
}

// Serialize returns the profile shape appropriate for the viewer.
func (u *User) Serialize(viewerID uuid.UUID) interface{} {
	if u.ID == viewerID {
		return Profile{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Phone:     u.Phone,
			City:      u.City,
			AvatarURL: u.AvatarURL,
			Role:      u.Role(),
			IsActive:  u.Active,
			LastLogin: u.LastLogin,
			IsSelf:    true,
			CreatedAt: u.CreatedAt,
		}
	}
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		City:      u.City,
		AvatarURL: u.AvatarURL,
		IsSelf:    false,
	}
}

// ListFilters defines user query filters.
type ListFilters struct {
	Keyword    string
	ActiveOnly bool
}

// CreateInput carries data for creating a new user.
type CreateInput struct {
	Email       string
	FirstName   string
	LastName    string
	Phone       *string
	City        *string
	AvatarURL   *string
	Password    string
	IsStaff     bool
	IsSuperuser bool
	IsModerator bool
}

// UpdateInput captures mutable user fields.
type UpdateInput struct {
	Email          *string
	FirstName      *string
	LastName       *string
	PhoneProvided  bool
	Phone          *string
	CityProvided   bool
	City           *string
	AvatarProvided bool
	AvatarURL      *string
	Password       *string
	Active         *bool
	IsModerator    *bool
}

// List queries users with filters and pagination.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]User, int64, error) {
	query := db.Model(&User{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			keyword, keyword, keyword)
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	if err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var usr User
	if err := db.First(&usr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// GetByEmail retrieves a user by email.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var usr User
	if err := db.First(&usr, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// Create inserts a new user with hashed password.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	if len(input.Password) < 8 {
		return User{}, ErrInvalidPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
	if err != nil {
		return User{}, err
	}

	usr := User{
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Phone:       trimStringPtr(input.Phone),
		City:        trimStringPtr(input.City),
		AvatarURL:   trimStringPtr(input.AvatarURL),
		Password:    string(hashedPassword),
		IsStaff:     input.IsStaff,
		IsSuperuser: input.IsSuperuser,
		IsModerator: input.IsModerator,
		Active:      true,
	}

	if err := db.Create(&usr).Error; err != nil {
		if isUniqueViolation(err) {
			return usr, ErrEmailTaken
		}
		return usr, err
	}

	return usr, nil
}

// Update modifies an existing user.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (User, error) {
	usr, err := Get(db, id)
	if err != nil {
		return usr, err
	}

	updates := map[string]interface{}{}

	if input.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*input.Email))
		if trimmed == "" {
			return usr, ErrInvalidCredentials
		}
		updates["email"] = trimmed
	}

	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}

	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}

	if input.PhoneProvided {
		updates["phone"] = trimStringPtr(input.Phone)
	}

	if input.CityProvided {
		updates["city"] = trimStringPtr(input.City)
	}

	if input.AvatarProvided {
		updates["avatar_url"] = trimStringPtr(input.AvatarURL)
	}

	if input.Password != nil {
		if len(*input.Password) < 8 {
			return usr, ErrInvalidPassword
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), 10)
		if err != nil {
			return usr, err
		}
		updates["password"] = string(hashedPassword)
	}

	if input.Active != nil {
		updates["is_active"] = *input.Active
	}

	if input.IsModerator != nil {
		updates["is_moderator"] = *input.IsModerator
	}

	if len(updates) > 0 {
		if err := db.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return usr, ErrEmailTaken
			}
			return usr, err
		}
	}

	return Get(db, id)
}

// Delete removes a user. Owned courses and lessons survive with a null
// owner; the user's subscriptions and payments go with the account.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("courses").Where("owner_id = ?", id).
			Update("owner_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Table("lessons").Where("owner_id = ?", id).
			Update("owner_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM subscriptions WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM payments WHERE user_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// DeactivateInactive disables active accounts whose last login is older
// than the cutoff. Staff and superusers are never touched; accounts that
// never logged in are left alone too. Returns the number of rows flipped.
func DeactivateInactive(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Model(&User{}).
		Where("is_active = ? AND is_staff = ? AND is_superuser = ?", true, false, false).
		Where("last_login IS NOT NULL AND last_login < ?", cutoff).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// ListInactive previews the accounts DeactivateInactive would disable.
func ListInactive(db *gorm.DB, cutoff time.Time) ([]User, error) {
	var users []User
	err := db.
		Where("is_active = ? AND is_staff = ? AND is_superuser = ?", true, false, false).
		Where("last_login IS NOT NULL AND last_login < ?", cutoff).
		Order("last_login ASC").
		Find(&users).Error
	return users, err
}

// TouchLastLogin records a successful authentication.
func TouchLastLogin(db *gorm.DB, id uuid.UUID, at time.Time) error {
	return db.Model(&User{}).Where("id = ?", id).Update("last_login", at).Error
}

// ComparePassword checks if the provided password matches the stored hash.
func (u *User) ComparePassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func trimStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "users_email_key")
}
