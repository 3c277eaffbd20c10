package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestFromProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		email   string
		want    User
	}{
		{
			name: "all fields present",
			profile: Profile{
				ID:         "u-1",
				FullName:   null.StringFrom("Arjun Kumar"),
				Role:       RoleStudent,
				AvatarURL:  null.StringFrom("https://img/arjun.png"),
				Department: null.StringFrom("CSE Department"),
				StudentID:  null.StringFrom("CSE21A001"),
				Semester:   null.IntFrom(6),
				Section:    null.StringFrom("A"),
				CGPA:       null.Float64From(8.9),
			},
			email: "arjun.kumar@univ.edu",
			want: User{
				ID:         "u-1",
				Name:       null.StringFrom("Arjun Kumar"),
				Email:      "arjun.kumar@univ.edu",
				Role:       RoleStudent,
				AvatarURL:  null.StringFrom("https://img/arjun.png"),
				Department: null.StringFrom("CSE Department"),
				Semester:   null.IntFrom(6),
				Section:    null.StringFrom("A"),
				StudentID:  null.StringFrom("CSE21A001"),
				CGPA:       null.Float64From(8.9),
			},
		},
		{
			name:    "optional fields absent",
			profile: Profile{ID: "u-2", FullName: null.StringFrom("Dr. Sarah Lin"), Role: RoleTeacher},
			email:   "sarah.lin@university.edu",
			want:    User{ID: "u-2", Name: null.StringFrom("Dr. Sarah Lin"), Email: "sarah.lin@university.edu", Role: RoleTeacher},
		},
		{
			name:    "zero values are not absent",
			profile: Profile{ID: "u-3", FullName: null.StringFrom(""), Role: RoleStudent, Semester: null.IntFrom(0), CGPA: null.Float64From(0)},
			want:    User{ID: "u-3", Name: null.StringFrom(""), Role: RoleStudent, Semester: null.IntFrom(0), CGPA: null.Float64From(0)},
		},
		{
			name:    "no name",
			profile: Profile{ID: "u-4", Role: RoleStudent},
			email:   "e@univ.edu",
			want:    User{ID: "u-4", Email: "e@univ.edu", Role: RoleStudent},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromProfile(tt.profile, tt.email)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.profile.FullName.Valid, got.Name.Valid)
			assert.Equal(t, tt.profile.AvatarURL.Valid, got.AvatarURL.Valid)
			assert.Equal(t, tt.profile.Semester.Valid, got.Semester.Valid)
			assert.Equal(t, tt.profile.CGPA.Valid, got.CGPA.Valid)
		})
	}
}

func TestToProfile_roundTrip(t *testing.T) {
	p := Profile{
		ID:         "u-1",
		FullName:   null.StringFrom("Priya Sharma"),
		Role:       RoleStudent,
		Department: null.StringFrom("CSE Department"),
		StudentID:  null.StringFrom("CSE21A002"),
		CGPA:       null.Float64From(9.2),
	}
	assert.Equal(t, p, ToProfile(FromProfile(p, "priya.sharma@univ.edu")))
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name        string
		usr         User
		wantName    string
		wantInitial string
	}{
		{"name", User{Name: null.StringFrom("arjun Kumar"), Email: "arjun.kumar@univ.edu"}, "arjun Kumar", "A"},
		{"absent name", User{Email: "e@univ.edu"}, "e@univ.edu", "E"},
		{"blank name", User{Name: null.StringFrom("  "), Email: "e@univ.edu"}, "e@univ.edu", "E"},
		{"nothing", User{}, "", "?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.usr.DisplayName())
			assert.Equal(t, tt.wantInitial, tt.usr.Initial())
		})
	}
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleTeacher.IsStaff())
	assert.False(t, RoleStudent.IsStaff())
	assert.False(t, Role("janitor").Valid())
	assert.Equal(t, "Teacher", RoleTeacher.Label())
}

func TestRoster_Match(t *testing.T) {
	teacher := Account{User: User{ID: "u1", Name: null.StringFrom("Dr. Sarah Lin"), Email: "sarah.lin@university.edu", Role: RoleTeacher}}
	require.NoError(t, teacher.SetPassword("password"))
	student := Account{User: User{ID: "cse001", Name: null.StringFrom("Arjun Kumar"), Email: "arjun.kumar@univ.edu", Role: RoleStudent}}
	require.NoError(t, student.SetPassword("Arjun@123"))
	roster := NewRoster(teacher, student)

	tests := []struct {
		name     string
		email    string
		password string
		role     Role
		wantID   string
		wantErr  error
	}{
		{name: "student", email: "arjun.kumar@univ.edu", password: "Arjun@123", role: RoleStudent, wantID: "cse001"},
		{name: "email is case-insensitive", email: "  Arjun.Kumar@UNIV.edu ", password: "Arjun@123", role: RoleStudent, wantID: "cse001"},
		{name: "teacher", email: "sarah.lin@university.edu", password: "password", role: RoleTeacher, wantID: "u1"},
		{name: "any role", email: "sarah.lin@university.edu", password: "password", wantID: "u1"},
		{name: "wrong namespace", email: "arjun.kumar@univ.edu", password: "Arjun@123", role: RoleTeacher, wantErr: ErrInvalidCredentials},
		{name: "wrong password", email: "arjun.kumar@univ.edu", password: "arjun@123", role: RoleStudent, wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@univ.edu", password: "x", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := roster.Match(tt.email, tt.password, tt.role)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, usr.ID)
		})
	}

	usr, ok := roster.Get("cse001")
	assert.True(t, ok)
	assert.Equal(t, null.StringFrom("Arjun Kumar"), usr.Name)
	assert.Len(t, roster.Students(), 1)
	assert.Len(t, roster.Users(), 2)
}
