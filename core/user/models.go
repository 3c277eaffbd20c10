package user

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/assignflow/core"
)

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var (
	ErrNotFound           = errors.New("profile not found")
	ErrInvalidCredentials = errors.New("Invalid credentials")

	AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}
)

type Role string

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// IsStaff tells whether the role uses the staff views (teacher & admin share them).
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTeacher
}

func (r Role) Label() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// User is the identity of whoever is signed in.
type User struct {
	ID         string       `json:"id"`
	Name       null.String  `json:"name"`
	Email      string       `json:"email"`
	Role       Role         `json:"role"`
	AvatarURL  null.String  `json:"avatarUrl"`
	Department null.String  `json:"department"`
	Semester   null.Int     `json:"semester"`
	Section    null.String  `json:"section"`
	StudentID  null.String  `json:"studentId"`
	CGPA       null.Float64 `json:"cgpa"`
}

func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsStaff() bool   { return u.Role.IsStaff() }

// DisplayName is the user's name, or the email when the profile has none.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.Name.String); u.Name.Valid && name != "" {
		return name
	}
	return u.Email
}

// Initial returns the first letter of the display name, used when there is no avatar.
func (u User) Initial() string {
	name := u.DisplayName()
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}

// Profile is a row of the remote `profiles` table.
type Profile struct {
	ID         string       `json:"id" db:"id"`
	FullName   null.String  `json:"full_name" db:"full_name"`
	Role       Role         `json:"role" db:"role"`
	AvatarURL  null.String  `json:"avatar_url" db:"avatar_url"`
	Department null.String  `json:"department" db:"department"`
	StudentID  null.String  `json:"student_id" db:"student_id"`
	Semester   null.Int     `json:"semester" db:"semester"`
	Section    null.String  `json:"section" db:"section"`
	CGPA       null.Float64 `json:"cgpa" db:"cgpa"`
}

// FromProfile maps a profile row and the session's email to an identity.
// Absent optional columns stay absent.
func FromProfile(p Profile, email string) User {
	return User{
		ID:         p.ID,
		Name:       p.FullName,
		Email:      email,
		Role:       p.Role,
		AvatarURL:  p.AvatarURL,
		Department: p.Department,
		Semester:   p.Semester,
		Section:    p.Section,
		StudentID:  p.StudentID,
		CGPA:       p.CGPA,
	}
}

// ToProfile is the inverse of FromProfile, minus the email which profiles do not store.
func ToProfile(u User) Profile {
	return Profile{
		ID:         u.ID,
		FullName:   u.Name,
		Role:       u.Role,
		AvatarURL:  u.AvatarURL,
		Department: u.Department,
		StudentID:  u.StudentID,
		Semester:   u.Semester,
		Section:    u.Section,
		CGPA:       u.CGPA,
	}
}

// ProfileRepository reads and writes `profiles` rows.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (Profile, error)
	CreateProfile(ctx context.Context, p Profile) (Profile, error)
}

// NewProfile contains the information needed to provision a profile.
type NewProfile struct {
	ID         string  `json:"id" validate:"required,uuid"`
	FullName   string  `json:"full_name" validate:"required,notblank"`
	Role       Role    `json:"role" validate:"required,oneof=admin teacher student"`
	Department string  `json:"department"`
	StudentID  string  `json:"student_id" validate:"required_if=Role student"`
	Semester   int     `json:"semester" validate:"omitempty,min=1,max=12"`
	Section    string  `json:"section"`
	CGPA       float64 `json:"cgpa" validate:"omitempty,min=0,max=10"`
}

func (np NewProfile) Profile() Profile {
	p := Profile{
		ID:       core.CleanString(np.ID),
		FullName: null.StringFrom(core.CleanString(np.FullName)),
		Role:     np.Role,
	}
	if s := core.CleanString(np.Department); s != "" {
		p.Department = null.StringFrom(s)
	}
	if s := core.CleanString(np.StudentID); s != "" {
		p.StudentID = null.StringFrom(s)
	}
	if s := core.CleanString(np.Section); s != "" {
		p.Section = null.StringFrom(s)
	}
	if np.Semester > 0 {
		p.Semester = null.IntFrom(np.Semester)
	}
	if np.CGPA > 0 {
		p.CGPA = null.Float64From(np.CGPA)
	}
	return p
}

// Account is a fixture roster entry: an identity plus its password hash.
type Account struct {
	User
	PasswordHash []byte `json:"-"`
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}
