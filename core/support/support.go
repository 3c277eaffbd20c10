// Package support sends the students' "Ask Faculty" questions.
package support

import (
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/assignflow/core"
	"github.com/trezcool/assignflow/core/user"
)

var ErrNoFaculty = errors.New("no faculty address configured")

type Query struct {
	Subject string `form:"subject" json:"subject" validate:"max=120"`
	Message string `form:"message" json:"message" validate:"required,notblank,max=4000"`
}

func (q *Query) Clean() {
	q.Subject = core.CleanString(q.Subject)
	q.Message = core.CleanString(q.Message)
}

type Service struct {
	conf   *core.Config
	mailer core.EmailService
}

func NewService(conf *core.Config, mailer core.EmailService) *Service {
	return &Service{conf: conf, mailer: mailer}
}

// Ask mails the question to the faculty. Replies go to the student.
func (svc *Service) Ask(from user.User, q Query) error {
	faculty := svc.conf.FacultyAddress()
	if faculty.Address == "" {
		return ErrNoFaculty
	}
	subject := q.Subject
	if subject == "" {
		subject = "Question from " + from.DisplayName()
	}
	svc.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{faculty},
		ReplyTo:      &mail.Address{Name: from.DisplayName(), Address: from.Email},
		Subject:      subject,
		TemplateName: "ask_faculty",
		TemplateData: map[string]interface{}{
			"Student": from,
			"Message": q.Message,
		},
	})
	return nil
}
