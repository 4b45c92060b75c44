package main

import (
	"strings"

	"github.com/miraalabed/schoolsys/core/school"
)

var teacherMenuOptions = []string{
	"View Profile",
	"Update Contact Info",
	"Manage Student Grades",
	"Switch Account",
	"Exit",
}

func (s *session) teacherMenu(email string) bool {
	s.cons.Info("Welcome to Teacher Panel")
	for {
		switch s.cons.Choose("Teacher Menu", teacherMenuOptions) {
		case "View Profile":
			s.viewTeacherProfile(email)
		case "Update Contact Info":
			s.updateTeacherContactInfo(email)
		case "Manage Student Grades":
			s.manageStudentGrades(email)
		case "Switch Account":
			return true
		case "Exit", "":
			return false
		}
	}
}

func (s *session) viewTeacherProfile(email string) {
	tch, err := s.svc.TeacherByEmail(email)
	if err != nil {
		s.reportError(err)
		return
	}

	s.cons.Info("Teacher Profile")
	s.cons.Line("Name: %s", tch.Name)
	s.cons.Line("Email: %s", tch.Email)
	s.cons.Line("Phone: %s", tch.Phone)
	s.cons.Line("Subject: %s", tch.Subject)
	if len(tch.ClassNames) == 0 {
		s.cons.Line("Classes: none assigned")
	} else {
		s.cons.Line("Classes: %s", strings.Join(tch.ClassNames, ", "))
	}
	s.svc.LogAction("viewed own profile")
}

func (s *session) updateTeacherContactInfo(email string) {
	tch, err := s.svc.TeacherByEmail(email)
	if err != nil {
		s.reportError(err)
		return
	}

	var ut school.UpdateTeacher
	switch s.cons.Choose("What would you like to update?", []string{"Phone", "Password", "Exit"}) {
	case "Phone":
		ut.Phone = s.askDigits("Enter new phone", 10)
	case "Password":
		// changing the password requires proving the current one
		if s.cons.AskSecret("Enter current password") != tch.Password {
			s.cons.Error("Incorrect current password.")
			return
		}
		pwd := s.askPassword("Enter new password")
		if s.cons.AskSecret("Confirm new password") != pwd {
			s.cons.Error("Passwords do not match.")
			return
		}
		ut.Password = pwd
	case "Exit", "":
		return
	}

	if _, err := s.svc.UpdateTeacher(tch.Email, ut); err != nil {
		s.reportError(err)
		return
	}
	s.cons.Info("Info updated!")
}

// manageStudentGrades lets a teacher grade students in their assigned
// classes, for their own subject only.
func (s *session) manageStudentGrades(email string) {
	tch, err := s.svc.TeacherByEmail(email)
	if err != nil {
		s.reportError(err)
		return
	}
	if len(tch.ClassNames) == 0 {
		s.cons.Error("You have no assigned classes.")
		return
	}

	className := s.cons.Choose("Select one of your classes", tch.ClassNames)
	if className == "" {
		return
	}
	students, err := s.svc.StudentsInClass(className)
	if err != nil {
		s.reportError(err)
		return
	}
	if len(students) == 0 {
		s.cons.Line("No students in %s.", className)
		return
	}

	options := make([]string, len(students))
	for i, stu := range students {
		options[i] = stu.Name + " (" + stu.Email + ")"
	}
	choice := s.cons.Choose("Select student", options)
	var stu school.Student
	for i, opt := range options {
		if opt == choice {
			stu = students[i]
			break
		}
	}
	if stu.Email == "" {
		return
	}

	if g, ok := stu.Grade(tch.Subject); ok {
		s.cons.Line("Current %s grade for %s: %g", tch.Subject, stu.Name, g)
	} else {
		s.cons.Line("No %s grade recorded for %s yet.", tch.Subject, stu.Name)
	}

	switch s.cons.Choose("What do you want to do?", []string{"Add/Update Grade", "Delete Grade", "Exit"}) {
	case "Add/Update Grade":
		grade := s.askValidGrade("Enter grade for " + tch.Subject)
		if err := s.svc.AssignGrade(stu.Email, tch.Subject, grade); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Grade saved.")
	case "Delete Grade":
		if err := s.svc.RemoveGrade(stu.Email, tch.Subject); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Grade removed.")
	}
}
