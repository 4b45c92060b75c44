package main

import (
	"github.com/miraalabed/schoolsys/core"
	"github.com/miraalabed/schoolsys/core/school"
)

var adminMenuOptions = []string{
	"Create New Student",
	"View Student Profile",
	"Edit Student",
	"Delete Student",
	"Activate/Deactivate Student Account",
	"View All Students",
	"View Active Students",
	"Create New Teacher",
	"Edit Teacher",
	"Assign Teacher Classes",
	"Manage Subjects and Grades",
	"Manage Classes",
	"View Classes Info",
	"Class Statistics",
	"Switch Account",
	"Exit",
}

// adminMenu dispatches admin actions until Exit or Switch Account; the
// return value is true when the caller should re-enter the login stage.
func (s *session) adminMenu() bool {
	s.cons.Info("Welcome to Admin Panel")
	for {
		switch s.cons.Choose("Admin Menu", adminMenuOptions) {
		case "Create New Student":
			s.createStudent()
		case "View Student Profile":
			s.viewStudentByEmail()
		case "Edit Student":
			s.editStudent()
		case "Delete Student":
			s.deleteStudent()
		case "Activate/Deactivate Student Account":
			s.toggleStudentStatus()
		case "View All Students":
			s.listAllStudents()
		case "View Active Students":
			s.listActiveStudents()
		case "Create New Teacher":
			s.createTeacher()
		case "Edit Teacher":
			s.editTeacher()
		case "Assign Teacher Classes":
			s.assignTeacherClasses()
		case "Manage Subjects and Grades":
			s.manageSubjectsAndGrades()
		case "Manage Classes":
			s.manageClasses()
		case "View Classes Info":
			s.viewClassesInfo()
		case "Class Statistics":
			s.viewClassStatistics()
		case "Switch Account":
			return true
		case "Exit", "":
			return false
		}
	}
}

func (s *session) createStudent() {
	classes, err := s.svc.QueryAllClasses()
	if err != nil || len(classes) == 0 {
		s.cons.Error("No classes available. Create a class first.")
		return
	}

	s.cons.Info("Creating a New Student...")
	ns := school.NewStudent{Name: s.askNonEmpty("Enter full name")}
	ns.Email = s.askEmail("Enter email", "")
	for !s.cons.EOF() {
		ns.IDNumber = s.askDigits("Enter ID number", 9)
		if err := s.svc.CheckIDNumberAvailable(ns.IDNumber); err != nil {
			s.cons.Error("%s.", capitalize(err.Error()))
			continue
		}
		break
	}
	ns.Age = s.askIntIn("Enter age", 5, 20)
	ns.ClassName = s.cons.Choose("Assign class", classNames(classes))
	ns.Phone = s.askDigits("Enter phone number", 10)
	ns.Password = s.askPassword("Enter password")

	if _, err := s.svc.CreateStudent(ns); err != nil {
		s.reportError(err)
		return
	}
	s.cons.Info("Student created successfully!")
}

func (s *session) viewStudentByEmail() {
	email := s.askNonEmpty("Enter student's email to view")
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.cons.Error("Student not found.")
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
	s.svc.LogAction("viewed profile for student: %s", stu.Email)
}

func (s *session) editStudent() {
	email := core.CleanString(s.askNonEmpty("Enter student's email to edit"), true /* lower */)
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.cons.Error("Student not found.")
		return
	}
	email = stu.Email

	for !s.cons.EOF() {
		choice := s.cons.Choose("What would you like to update?", []string{
			"Name", "Email", "Age", "Phone", "Class", "Exit",
		})

		var us school.UpdateStudent
		switch choice {
		case "Name":
			us.Name = s.askNonEmpty("Enter new name")
		case "Email":
			us.Email = s.askEmail("Enter new email", email, email)
		case "Age":
			us.Age = s.askIntIn("Enter new age", 5, 20)
		case "Phone":
			us.Phone = s.askDigits("Enter new phone", 10)
		case "Class":
			classes, err := s.svc.QueryAllClasses()
			if err != nil || len(classes) == 0 {
				s.cons.Error("No classes available.")
				continue
			}
			us.ClassName = s.cons.Choose("Choose new class", classNames(classes))
		case "Exit", "":
			s.cons.Info("Update session ended.")
			return
		}

		updated, err := s.svc.UpdateStudent(email, us)
		if err != nil {
			s.reportError(err)
			continue
		}
		email = updated.Email
		s.cons.Info("%s updated.", choice)
	}
}

func (s *session) deleteStudent() {
	email := s.askNonEmpty("Enter student's email to delete")
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.cons.Error("Student not found.")
		return
	}
	if !s.cons.Confirm("Are you sure you want to delete student: " + stu.Name + "?") {
		s.cons.Line("Deletion cancelled.")
		return
	}
	if err := s.svc.DeleteStudent(stu.Email); err != nil {
		s.reportError(err)
		return
	}
	s.cons.Info("Student deleted successfully.")
}

func (s *session) toggleStudentStatus() {
	email := s.askNonEmpty("Enter student's email to activate/deactivate")
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.cons.Error("Student not found.")
		return
	}

	s.cons.Info("Current status: %s", stu.Status)
	verb := "deactivate"
	if !stu.IsActive() {
		verb = "activate"
	}
	if !s.cons.Confirm("Do you want to " + verb + " this student?") {
		s.cons.Line("Operation cancelled.")
		return
	}
	updated, err := s.svc.ToggleStudentStatus(stu.Email)
	if err != nil {
		s.reportError(err)
		return
	}
	s.cons.Info("Student status changed to: %s", updated.Status)
}

func (s *session) listAllStudents() {
	s.cons.Info("All Students:")
	students, err := s.svc.QueryAllStudents()
	if err != nil {
		s.reportError(err)
		return
	}
	if len(students) == 0 {
		s.cons.Line("No students found.")
		return
	}
	for _, stu := range students {
		s.cons.Line("- %s | %s | %s | Status: %s", stu.Name, stu.Email, stu.ClassName, stu.Status)
	}
	s.svc.LogAction("viewed list of all students")
}

func (s *session) listActiveStudents() {
	s.cons.Info("Active Students:")
	students, err := s.svc.StudentsByStatus(school.StatusActive)
	if err != nil {
		s.reportError(err)
		return
	}
	if len(students) == 0 {
		s.cons.Line("No active students found.")
		return
	}
	for _, stu := range students {
		s.cons.Line("- %s | %s | %s", stu.Name, stu.Email, stu.ClassName)
	}
	s.svc.LogAction("viewed list of active students")
}

func (s *session) createTeacher() {
	s.cons.Info("Creating a New Teacher...")
	nt := school.NewTeacher{Name: s.askNonEmpty("Enter full name")}
	nt.Email = s.askEmail("Enter email", "")
	nt.Phone = s.askDigits("Enter phone number", 10)
	nt.Subject = s.askNonEmpty("Enter subject")
	nt.Password = s.askPassword("Enter password")

	if _, err := s.svc.CreateTeacher(nt); err != nil {
		s.reportError(err)
		return
	}
	s.cons.Info("Teacher created successfully!")
}

func (s *session) editTeacher() {
	email := s.askNonEmpty("Enter teacher's email to edit")
	tch, err := s.svc.TeacherByEmail(email)
	if err != nil {
		s.cons.Error("Teacher not found.")
		return
	}

	for !s.cons.EOF() {
		choice := s.cons.Choose("What would you like to update?", []string{"Name", "Phone", "Exit"})

		var ut school.UpdateTeacher
		switch choice {
		case "Name":
			ut.Name = s.askNonEmpty("Enter new name")
		case "Phone":
			ut.Phone = s.askDigits("Enter new phone", 10)
		case "Exit", "":
			s.cons.Info("Update session ended.")
			return
		}
		if _, err := s.svc.UpdateTeacher(tch.Email, ut); err != nil {
			s.reportError(err)
			continue
		}
		s.cons.Info("%s updated.", choice)
	}
}

func (s *session) assignTeacherClasses() {
	email := s.askNonEmpty("Enter teacher's email")
	tch, err := s.svc.TeacherByEmail(email)
	if err != nil {
		s.cons.Error("Teacher not found.")
		return
	}

	for !s.cons.EOF() {
		if len(tch.ClassNames) == 0 {
			s.cons.Line("No classes assigned.")
		} else {
			s.cons.Line("Assigned classes:")
			for _, cn := range tch.ClassNames {
				s.cons.Line("- %s", cn)
			}
		}

		switch s.cons.Choose("Do you want to assign or unassign a class?", []string{"Assign", "Unassign", "Exit"}) {
		case "Assign":
			classes, err := s.svc.QueryAllClasses()
			if err != nil || len(classes) == 0 {
				s.cons.Error("No classes available.")
				continue
			}
			name := s.cons.Choose("Select class", classNames(classes))
			tch, err = s.svc.AssignTeacherClass(tch.Email, name)
			if err != nil {
				s.reportError(err)
				continue
			}
			s.cons.Info("Class assigned.")
		case "Unassign":
			if len(tch.ClassNames) == 0 {
				continue
			}
			name := s.cons.Choose("Select class", tch.ClassNames)
			tch, err = s.svc.UnassignTeacherClass(tch.Email, name)
			if err != nil {
				s.reportError(err)
				continue
			}
			s.cons.Info("Class unassigned.")
		case "Exit", "":
			return
		}
	}
}

func (s *session) manageSubjectsAndGrades() {
	switch s.cons.Choose("What do you want to manage?", []string{"Subjects", "Grades", "Exit"}) {
	case "Subjects":
		s.manageClassSubjects()
	case "Grades":
		s.manageStudentGradesAsAdmin()
	}
}

func (s *session) manageClassSubjects() {
	classes, err := s.svc.QueryAllClasses()
	if err != nil || len(classes) == 0 {
		s.cons.Error("No classes available.")
		return
	}
	name := s.cons.Choose("Select class", classNames(classes))
	cls, err := s.svc.ClassByName(name)
	if err != nil {
		s.reportError(err)
		return
	}

	if len(cls.Subjects) == 0 {
		s.cons.Line("No subjects currently assigned to %s.", cls.Name)
	} else {
		s.cons.Line("Current subjects for %s:", cls.Name)
		for _, subj := range cls.Subjects {
			s.cons.Line("- %s", subj)
		}
	}

	action := s.cons.Choose("Do you want to add or remove a subject?", []string{"Add", "Remove"})
	subject := s.askNonEmpty("Enter subject name")

	if action == "Add" {
		if _, err := s.svc.AddClassSubject(cls.Name, subject); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Subject '%s' added to %s.", subject, cls.Name)
	} else {
		if _, err := s.svc.RemoveClassSubject(cls.Name, subject); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Subject '%s' removed from %s.", subject, cls.Name)
	}
}

func (s *session) manageStudentGradesAsAdmin() {
	email := s.askNonEmpty("Enter student's email")
	stu, err := s.svc.StudentByEmail(email)
	if err != nil {
		s.cons.Error("Student not found.")
		return
	}
	cls, err := s.svc.ClassByName(stu.ClassName)
	if err != nil {
		s.cons.Error("Class not found.")
		return
	}
	if len(cls.Subjects) == 0 {
		s.cons.Line("No subjects assigned to %s.", stu.ClassName)
		return
	}

	if len(stu.Grades) > 0 {
		s.cons.Line("Current Grades for %s:", stu.Name)
		for _, subj := range cls.Subjects {
			if g, ok := stu.Grade(subj); ok {
				s.cons.Line("- %s: %g", subj, g)
			}
		}
	} else {
		s.cons.Line("No grades assigned yet.")
	}

	subject := s.cons.Choose("Choose subject to manage grade", cls.Subjects)
	if s.cons.Choose("Add/Update or Remove grade?", []string{"Add/Update", "Remove"}) == "Add/Update" {
		grade := s.askValidGrade("Enter grade for " + subject)
		if err := s.svc.AssignGrade(stu.Email, subject, grade); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Grade saved.")
	} else {
		if err := s.svc.RemoveGrade(stu.Email, subject); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Grade removed.")
	}
}

func (s *session) manageClasses() {
	switch s.cons.Choose("What do you want to do?", []string{"Create Class", "Set Supervisor", "Delete Class", "Exit"}) {
	case "Create Class":
		nc := school.NewClass{Name: s.askNonEmpty("Enter class name")}
		nc.Supervisor = core.CleanString(s.cons.Ask("Enter supervisor name (optional)", ""))
		if _, err := s.svc.CreateClass(nc); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Class created successfully!")
	case "Set Supervisor":
		classes, err := s.svc.QueryAllClasses()
		if err != nil || len(classes) == 0 {
			s.cons.Error("No classes available.")
			return
		}
		name := s.cons.Choose("Select class", classNames(classes))
		supervisor := s.cons.Ask("Enter supervisor name (empty to unassign)", "")
		if _, err := s.svc.SetClassSupervisor(name, supervisor); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Supervisor updated.")
	case "Delete Class":
		classes, err := s.svc.QueryAllClasses()
		if err != nil || len(classes) == 0 {
			s.cons.Error("No classes available.")
			return
		}
		name := s.cons.Choose("Select class to delete", classNames(classes))
		if !s.cons.Confirm("Are you sure you want to delete class: " + name + "?") {
			s.cons.Line("Deletion cancelled.")
			return
		}
		if err := s.svc.DeleteClass(name); err != nil {
			s.reportError(err)
			return
		}
		s.cons.Info("Class deleted successfully.")
	}
}

func (s *session) viewClassesInfo() {
	for !s.cons.EOF() {
		classes, err := s.svc.QueryAllClasses()
		if err != nil || len(classes) == 0 {
			s.cons.Error("No classes available.")
			return
		}
		options := append(classNames(classes), "Exit")
		choice := s.cons.Choose("Select a class to view details", options)
		if choice == "Exit" || choice == "" {
			return
		}
		cls, err := s.svc.ClassByName(choice)
		if err != nil {
			s.reportError(err)
			return
		}

		s.cons.Info("Class: %s", cls.Name)
		s.cons.Line("Supervisor: %s", cls.SupervisorName())
		if len(cls.Subjects) > 0 {
			s.cons.Line("Subjects:")
			for _, subj := range cls.Subjects {
				s.cons.Line("- %s", subj)
			}
		} else {
			s.cons.Line("No subjects assigned.")
		}
		s.svc.LogAction("viewed class info for %s", cls.Name)
	}
}

func (s *session) viewClassStatistics() {
	stats, err := s.svc.QueryClassStats()
	if err != nil {
		s.reportError(err)
		return
	}
	if len(stats) == 0 {
		s.cons.Line("No classes found.")
		return
	}
	s.cons.Info("Class Statistics:")
	for _, st := range stats {
		s.cons.Line("- %s | students: %d | active: %d | inactive: %d", st.ClassName, st.Total, st.Active, st.Inactive)
	}
	s.svc.LogAction("viewed class statistics")
}
