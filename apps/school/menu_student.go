package main

import (
	"github.com/miraalabed/schoolsys/core/school"
)

var studentMenuOptions = []string{
	"View Profile",
	"Update Contact Info",
	"View Subjects and Grades",
	"View Assigned Classroom",
	"Switch Account",
	"Exit",
}

func (s *session) studentMenu(email string) bool {
	s.cons.Info("Welcome to Student Panel")
	for {
		switch s.cons.Choose("Student Menu", studentMenuOptions) {
		case "View Profile":
			s.viewStudentProfile(email)
		case "Update Contact Info":
			// a changed email re-keys the account for the rest of the session
			email = s.updateStudentContactInfo(email)
		case "View Subjects and Grades":
			s.viewStudentGrades(email)
		case "View Assigned Classroom":
			s.viewStudentClassroom(email)
		case "Switch Account":
			return true
		case "Exit", "":
			return false
		}
	}
}

func (s *session) viewStudentProfile(email string) {
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.reportError(err)
		return
	}

	s.cons.Info("Student Profile")
	s.cons.Line("Name: %s", stu.Name)
	s.cons.Line("Email: %s", stu.Email)
	s.cons.Line("Phone: %s", stu.Phone)
	s.cons.Line("Age: %d", stu.Age)
	s.cons.Line("ID Number: %s", stu.IDNumber)
	s.cons.Line("Class: %s", stu.ClassName)
	s.cons.Line("Status: %s", stu.Status)
	s.svc.LogAction("viewed own profile")
}

func (s *session) updateStudentContactInfo(email string) string {
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.reportError(err)
		return email
	}

	var us school.UpdateStudent
	switch s.cons.Choose("What would you like to update?", []string{"Email", "Phone", "Exit"}) {
	case "Email":
		us.Email = s.askEmail("Enter new email", stu.Email, stu.Email)
	case "Phone":
		us.Phone = s.askDigits("Enter new phone", 10)
	case "Exit", "":
		return email
	}

	updated, err := s.svc.UpdateStudent(stu.Email, us)
	if err != nil {
		s.reportError(err)
		return email
	}
	s.cons.Info("Info updated!")
	return updated.Email
}

func (s *session) viewStudentGrades(email string) {
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.reportError(err)
		return
	}
	cls, err := s.svc.ClassByName(stu.ClassName)
	if err != nil {
		s.reportError(err)
		return
	}
	if len(cls.Subjects) == 0 {
		s.cons.Line("No subjects assigned to %s yet.", cls.Name)
		return
	}

	s.cons.Info("Subjects and Grades for %s:", stu.Name)
	for _, subj := range cls.Subjects {
		if g, ok := stu.Grade(subj); ok {
			s.cons.Line("- %s: %g", subj, g)
		} else {
			s.cons.Line("- %s: (No grade)", subj)
		}
	}
	s.svc.LogAction("viewed own subjects and grades")
}

func (s *session) viewStudentClassroom(email string) {
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.reportError(err)
		return
	}
	cls, err := s.svc.ClassByName(stu.ClassName)
	if err != nil {
		s.reportError(err)
		return
	}

	s.cons.Info("Classroom: %s", cls.Name)
	s.cons.Line("Supervisor: %s", cls.SupervisorName())
	if len(cls.Subjects) > 0 {
		s.cons.Line("Subjects:")
		for _, subj := range cls.Subjects {
			s.cons.Line("- %s", subj)
		}
	} else {
		s.cons.Line("No subjects assigned.")
	}
	s.svc.LogAction("viewed own classroom info")
}
