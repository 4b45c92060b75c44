package main

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/miraalabed/schoolsys/core"
	"github.com/miraalabed/schoolsys/core/school"
)

const maxPasswordAttempts = 3

var (
	errTooManyAttempts    = errors.New("too many failed attempts")
	errAccountDeactivated = errors.New("account is deactivated")
)

type session struct {
	cons console
	svc  *school.Service
}

func newSession(cons console, svc *school.Service) *session {
	return &session{cons: cons, svc: svc}
}

// run drives the login state machine: AwaitingEmail, AwaitingPassword,
// Authenticated, MenuLoop, Exited. "Switch Account" re-enters AwaitingEmail
// with the loaded data intact.
func (s *session) run() {
	s.cons.Info("Welcome to %s", core.Conf.AppName)
	for {
		email, role, ok := s.awaitEmail()
		if !ok {
			return
		}

		name, err := s.awaitPassword(email, role)
		switch err {
		case nil:
		case errAccountDeactivated:
			s.cons.Error("This account is not activated. Please contact the administration to activate it.")
			return
		case errTooManyAttempts:
			s.cons.Error("Too many failed attempts. Goodbye.")
			return
		default:
			s.cons.Error("%v", err)
			return
		}

		sessionID := uuid.New().String()
		s.svc.SetActor(role, name)
		s.svc.LogAction("logged in using email: %s (session %s)", email, sessionID)
		s.cons.Line("You are logged in as [%s] with email: %s", role, email)

		var switchAccount bool
		switch role {
		case school.RoleAdmin:
			switchAccount = s.adminMenu()
		case school.RoleTeacher:
			switchAccount = s.teacherMenu(email)
		case school.RoleStudent:
			switchAccount = s.studentMenu(email)
		}
		if !switchAccount {
			s.svc.LogAction("exited the system (session %s)", sessionID)
			s.cons.Info("Goodbye!")
			s.cons.Line("Audit log saved at: %s", core.Conf.AuditLogPath)
			return
		}
		s.svc.LogAction("switched account (session %s)", sessionID)
		s.svc.SetActor("", "")
	}
}

// awaitEmail loops until a well-formed email resolves to a role and a known
// identity. There is no retry limit on this stage.
func (s *session) awaitEmail() (email, role string, ok bool) {
	for !s.cons.EOF() {
		email = core.CleanString(s.cons.Ask("Enter your email", ""), true /* lower */)
		if email == "" {
			s.cons.Error("Email field must not be empty.")
			continue
		}
		if err := core.Validate.Var(email, "email"); err != nil {
			s.cons.Error("Invalid email format. Correct format: example@gmail.com")
			continue
		}
		if email == core.Conf.AdminEmail {
			return email, school.RoleAdmin, true
		}
		role = school.RoleFromEmail(email)
		if role == school.RoleAdmin {
			s.cons.Error("Admin must login using: %s", core.Conf.AdminEmail)
			continue
		}
		if role == "" {
			s.cons.Error("Unrecognized email domain. Use your @student or @teacher address.")
			continue
		}
		// resolve the identity up front so typos are caught before the
		// password stage
		switch role {
		case school.RoleTeacher:
			if _, err := s.svc.TeacherByEmail(email); err != nil {
				s.cons.Error("No teacher found with this email.")
				continue
			}
		case school.RoleStudent:
			if _, err := s.svc.StudentByEmail(email); err != nil {
				s.cons.Error("No student found with this email.")
				continue
			}
		}
		return email, role, true
	}
	return "", "", false
}

// awaitPassword challenges the resolved identity, allowing at most
// maxPasswordAttempts tries; an empty input burns an attempt. A deactivated
// student fails immediately, before any prompt.
func (s *session) awaitPassword(email, role string) (string, error) {
	var name, stored string
	switch role {
	case school.RoleAdmin:
		name = core.Conf.AdminName
	case school.RoleTeacher:
		tch, err := s.svc.TeacherByEmail(email)
		if err != nil {
			return "", err
		}
		name, stored = tch.Name, tch.Password
	case school.RoleStudent:
		stu, err := s.svc.StudentByEmail(email)
		if err != nil {
			return "", err
		}
		if !stu.IsActive() {
			return "", errAccountDeactivated
		}
		name, stored = stu.Name, stu.Password
	}

	for attempts := 0; attempts < maxPasswordAttempts; attempts++ {
		pwd := s.cons.AskSecret("Enter your password")
		if strings.TrimSpace(pwd) == "" {
			s.cons.Error("Password field must not be empty.")
			continue
		}
		if role == school.RoleAdmin {
			if checkAdminPassword(pwd) {
				return name, nil
			}
		} else if pwd == stored {
			return name, nil
		}
		s.cons.Error("Incorrect password for %s.", role)
	}
	return "", errTooManyAttempts
}

// checkAdminPassword verifies the configured admin credential; a bcrypt hash
// takes precedence over the plain password when set.
func checkAdminPassword(pwd string) bool {
	if hash := core.Conf.AdminPasswordHash; hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd)) == nil
	}
	return pwd == core.Conf.AdminPassword
}
