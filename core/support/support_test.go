package support_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/support"
	"github.com/trezcool/assignflow/core/user"
	appfs "github.com/trezcool/assignflow/fs"
	emailsvc "github.com/trezcool/assignflow/services/email"
	testutil "github.com/trezcool/assignflow/tests"
)

var arjun = user.User{
	ID:        "cse001",
	Name:      null.StringFrom("Arjun Kumar"),
	Email:     "arjun.kumar@univ.edu",
	Role:      user.RoleStudent,
	StudentID: null.StringFrom("CSE21A001"),
}

func TestService_Ask(t *testing.T) {
	require.NoError(t, core.ParseEmailTemplates(appfs.FS, true))

	tests := []struct {
		name        string
		query       support.Query
		wantSubject string
	}{
		{"with subject", support.Query{Subject: " Lab 3 ", Message: "When is the deadline?"}, "Lab 3"},
		{"default subject", support.Query{Message: "When is the deadline?"}, "Question from Arjun Kumar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testutil.Config()
			mailer := emailsvc.NewConsoleServiceMock(conf, testutil.NopLogger{})
			svc := support.NewService(conf, mailer)

			q := tt.query
			q.Clean()
			require.NoError(t, svc.Ask(arjun, q))

			sent := mailer.Sent()
			require.Len(t, sent, 1)
			msg := sent[0]
			assert.Equal(t, tt.wantSubject, msg.Subject)
			require.Len(t, msg.To, 1)
			assert.Equal(t, "faculty@univ.edu", msg.To[0].Address)
			assert.Equal(t, arjun.Email, msg.ReplyTo.Address)
			assert.Contains(t, msg.TextContent, "Arjun Kumar (arjun.kumar@univ.edu, CSE21A001) asked:")
			assert.Contains(t, msg.TextContent, "When is the deadline?")
			assert.Contains(t, msg.HTMLContent, "<strong>Arjun Kumar</strong>")
		})
	}
}

func TestService_Ask_noFaculty(t *testing.T) {
	conf := testutil.Config()
	conf.FacultyEmail = ""
	mailer := emailsvc.NewConsoleServiceMock(conf, testutil.NopLogger{})

	err := support.NewService(conf, mailer).Ask(arjun, support.Query{Message: "hi"})
	assert.Equal(t, support.ErrNoFaculty, err)
	assert.Empty(t, mailer.Sent())
}
