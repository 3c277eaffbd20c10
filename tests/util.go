package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/user"
)

// Config returns the settings used by tests: in-memory storage, no remote backend.
func Config() *core.Config {
	conf := &core.Config{
		Env:          "TEST",
		Debug:        true,
		TestMode:     true,
		AppName:      "AssignFlow",
		SecretKey:    "test-secret",
		FacultyEmail: "faculty@univ.edu",
	}
	conf.Server.CookieName = "assignflow_session"
	conf.Server.DisableReqLogs = true
	conf.Backend.Driver = core.DriverInMem
	conf.Backend.URL = core.PlaceholderBackendURL
	conf.Backend.AnonKey = core.PlaceholderBackendAnonKey
	return conf
}

// NopLogger drops everything.
type NopLogger struct{}

var _ core.Logger = NopLogger{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// RecordingLogger keeps the messages, to assert warnings were logged.
type RecordingLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (l *RecordingLogger) record(level, msg string) {
	l.mu.Lock()
	l.Messages = append(l.Messages, fmt.Sprintf("%s: %s", level, msg))
	l.mu.Unlock()
}

func (l *RecordingLogger) Debug(msg string, _ ...interface{}) { l.record("DEBUG", msg) }
func (l *RecordingLogger) Info(msg string, _ ...interface{})  { l.record("INFO", msg) }
func (l *RecordingLogger) Warn(msg string, _ ...interface{})  { l.record("WARN", msg) }
func (l *RecordingLogger) Error(msg string, _ ...interface{}) { l.record("ERROR", msg) }
func (l *RecordingLogger) Fatal(msg string, _ ...interface{}) { l.record("FATAL", msg) }

func (l *RecordingLogger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Messages)
}

// Account builds a roster account, hashing pwd with the cheapest cost.
func Account(t *testing.T, id, name, email, pwd string, role user.Role) user.Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Account() failed: %v", err)
	}
	acc := user.Account{
		User:         user.User{ID: id, Name: null.StringFrom(name), Email: email, Role: role},
		PasswordHash: hash,
	}
	if role == user.RoleStudent {
		acc.StudentID = null.StringFrom(id)
		acc.Department = null.StringFrom("CSE Department")
	}
	return acc
}

// Roster is a small demo roster: one teacher, one admin, two students.
func Roster(t *testing.T) *user.Roster {
	return user.NewRoster(
		Account(t, "u1", "Dr. Sarah Lin", "sarah.lin@university.edu", "password", user.RoleTeacher),
		Account(t, "adm1", "Registrar", "registrar@univ.edu", "password", user.RoleAdmin),
		Account(t, "cse001", "Arjun Kumar", "arjun.kumar@univ.edu", "Arjun@123", user.RoleStudent),
		Account(t, "cse002", "Priya Sharma", "priya.sharma@univ.edu", "Priya@123", user.RoleStudent),
	)
}
