package school_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miraalabed/schoolsys/core"
	"github.com/miraalabed/schoolsys/core/school"
	dummyaudit "github.com/miraalabed/schoolsys/services/audit/dummy"
	"github.com/miraalabed/schoolsys/storage/flatfile"
	testutil "github.com/miraalabed/schoolsys/tests"
)

func setupService(t *testing.T) (*school.Service, *flatfile.Store, *dummyaudit.Service) {
	t.Helper()
	db, err := flatfile.Open(t.TempDir())
	if err != nil {
		t.Fatalf("flatfile.Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	audit := dummyaudit.NewService()
	return school.NewService(db, audit), db, audit
}

func TestServiceCreateStudent(t *testing.T) {
	svc, db, audit := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "Ms. Rasha", "Math", "Science")
	svc.SetActor(school.RoleAdmin, "Admin")

	ns := school.NewStudent{
		Name:      "Ali",
		IDNumber:  "123456789",
		Phone:     "0777000111",
		Age:       16,
		ClassName: "Grade 10",
		Email:     "ali@student.com",
		Password:  "pass1",
	}
	stu, err := svc.CreateStudent(ns)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	if stu.Status != school.StatusActive {
		t.Errorf("Status = %q; expected %q", stu.Status, school.StatusActive)
	}
	if stu.Role != school.RoleStudent {
		t.Errorf("Role = %q; expected %q", stu.Role, school.RoleStudent)
	}

	entries := audit.Entries()
	if len(entries) != 1 || !strings.Contains(entries[0], "Admin Admin: created new student") {
		t.Errorf("audit entries = %v; expected one creation entry", entries)
	}
}

func TestServiceCreateStudentDuplicateIDNumber(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)

	ns := school.NewStudent{
		Name:      "Sara",
		IDNumber:  "123456789",
		Phone:     "0777000222",
		Age:       15,
		ClassName: "Grade 10",
		Email:     "sara@student.com",
		Password:  "pass2",
	}
	if _, err := svc.CreateStudent(ns); err != school.ErrIDNumberExists {
		t.Fatalf("CreateStudent(dup id) = %v; expected %v", err, school.ErrIDNumberExists)
	}
	students, _ := svc.QueryAllStudents()
	if len(students) != 1 {
		t.Errorf("student count = %d after rejected create; expected 1", len(students))
	}
}

func TestServiceCreateStudentValidation(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")

	tests := []struct {
		name  string
		alter func(ns *school.NewStudent)
	}{
		{"short id", func(ns *school.NewStudent) { ns.IDNumber = "1234" }},
		{"non-numeric phone", func(ns *school.NewStudent) { ns.Phone = "07770001ab" }},
		{"age too low", func(ns *school.NewStudent) { ns.Age = 4 }},
		{"age too high", func(ns *school.NewStudent) { ns.Age = 21 }},
		{"bad email", func(ns *school.NewStudent) { ns.Email = "not-an-email" }},
		{"short password", func(ns *school.NewStudent) { ns.Password = "abc" }},
		{"long password", func(ns *school.NewStudent) { ns.Password = "abcdefghi" }},
		{"comma in password", func(ns *school.NewStudent) { ns.Password = "ab,cd" }},
		{"comma in name", func(ns *school.NewStudent) { ns.Name = "Ali,Jr" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := school.NewStudent{
				Name:      "Ali",
				IDNumber:  "123456789",
				Phone:     "0777000111",
				Age:       16,
				ClassName: "Grade 10",
				Email:     "ali@student.com",
				Password:  "pass1",
			}
			tt.alter(&ns)
			_, err := svc.CreateStudent(ns)
			if err == nil {
				t.Fatal("CreateStudent() expected error")
			}
			if !core.IsValidationError(err) {
				t.Errorf("CreateStudent() = %v; expected a validation error", err)
			}
		})
	}
}

func TestServiceCreateStudentReservedEmail(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")

	ns := school.NewStudent{
		Name:      "Ali",
		IDNumber:  "123456789",
		Phone:     "0777000111",
		Age:       16,
		ClassName: "Grade 10",
		Email:     core.Conf.AdminEmail,
		Password:  "pass1",
	}
	if _, err := svc.CreateStudent(ns); err != school.ErrEmailReserved {
		t.Fatalf("CreateStudent(admin email) = %v; expected %v", err, school.ErrEmailReserved)
	}
}

func TestServiceDeleteStudent(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)
	testutil.CreateStudent(t, db, "Sara", "987654321", "sara@student.com", "pass2", "Grade 10", 15, true)

	if err := svc.DeleteStudent("ali@student.com"); err != nil {
		t.Fatalf("DeleteStudent() failed: %v", err)
	}
	students, _ := svc.QueryAllStudents()
	if len(students) != 1 {
		t.Fatalf("student count = %d; expected 1", len(students))
	}
	if _, err := svc.StudentByEmail("ali@student.com"); err != school.ErrStudentNotFound {
		t.Errorf("StudentByEmail(deleted) = %v; expected %v", err, school.ErrStudentNotFound)
	}
}

func TestServiceStudentByIDNumber(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)

	stu, err := svc.StudentByIDNumber("123456789")
	if err != nil {
		t.Fatalf("StudentByIDNumber() failed: %v", err)
	}
	if stu.Email != "ali@student.com" {
		t.Errorf("Email = %q; expected ali@student.com", stu.Email)
	}
	if _, err := svc.StudentByIDNumber("000000000"); err != school.ErrStudentNotFound {
		t.Errorf("StudentByIDNumber(unknown) = %v; expected %v", err, school.ErrStudentNotFound)
	}
}

func TestServiceDeleteTeacher(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateTeacher(t, db, "Rasha", "rasha@teacher.com", "pass3", "Math")

	if err := svc.DeleteTeacher("rasha@teacher.com"); err != nil {
		t.Fatalf("DeleteTeacher() failed: %v", err)
	}
	if _, err := svc.TeacherByEmail("rasha@teacher.com"); err != school.ErrTeacherNotFound {
		t.Errorf("TeacherByEmail(deleted) = %v; expected %v", err, school.ErrTeacherNotFound)
	}
	if err := svc.DeleteTeacher("rasha@teacher.com"); err != school.ErrTeacherNotFound {
		t.Errorf("DeleteTeacher(missing) = %v; expected %v", err, school.ErrTeacherNotFound)
	}
}

func TestServiceToggleStudentStatus(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)

	stu, err := svc.ToggleStudentStatus("ali@student.com")
	if err != nil {
		t.Fatalf("ToggleStudentStatus() failed: %v", err)
	}
	if stu.Status != school.StatusDeactive {
		t.Errorf("Status = %q; expected %q", stu.Status, school.StatusDeactive)
	}
	stu, _ = svc.ToggleStudentStatus("ali@student.com")
	if stu.Status != school.StatusActive {
		t.Errorf("Status = %q after second toggle; expected %q", stu.Status, school.StatusActive)
	}
}

func TestServiceAssignGradeStrictSubjects(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "", "Math")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)

	orig := core.Conf.StrictGradeSubjects
	defer func() { core.Conf.StrictGradeSubjects = orig }()

	core.Conf.StrictGradeSubjects = true
	if err := svc.AssignGrade("ali@student.com", "History", 80); err != school.ErrSubjectNotInClass {
		t.Errorf("AssignGrade(unlisted subject) = %v; expected %v", err, school.ErrSubjectNotInClass)
	}
	if err := svc.AssignGrade("ali@student.com", "Math", 80); err != nil {
		t.Errorf("AssignGrade(Math) failed: %v", err)
	}

	core.Conf.StrictGradeSubjects = false
	if err := svc.AssignGrade("ali@student.com", "History", 70); err != nil {
		t.Errorf("AssignGrade(unlisted, policy off) failed: %v", err)
	}
}

func TestServiceRemoveClassSubjectGradePolicy(t *testing.T) {
	orig := core.Conf.PurgeGradesOnSubjectRemoval
	defer func() { core.Conf.PurgeGradesOnSubjectRemoval = orig }()

	for _, purge := range []bool{false, true} {
		svc, db, _ := setupService(t)
		testutil.CreateClass(t, db, "Grade 10", "", "Math", "Science")
		testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)
		if err := svc.AssignGrade("ali@student.com", "Math", 95); err != nil {
			t.Fatalf("AssignGrade() failed: %v", err)
		}

		core.Conf.PurgeGradesOnSubjectRemoval = purge
		if _, err := svc.RemoveClassSubject("Grade 10", "Math"); err != nil {
			t.Fatalf("RemoveClassSubject() failed: %v", err)
		}

		stu, _ := svc.StudentByEmail("ali@student.com")
		_, ok := stu.Grade("Math")
		if purge && ok {
			t.Error("grade kept after subject removal with purge on")
		}
		if !purge && !ok {
			t.Error("grade dropped after subject removal with purge off")
		}
	}
}

// A field holding the files' own separator would encode to a line the next
// load cannot parse, losing the record. Such inputs must never reach the
// store.
func TestServiceRejectsFieldSeparatorInInputs(t *testing.T) {
	dir := t.TempDir()
	db, err := flatfile.Open(dir)
	if err != nil {
		t.Fatalf("flatfile.Open() failed: %v", err)
	}
	svc := school.NewService(db, dummyaudit.NewService())
	testutil.CreateClass(t, db, "Grade 10", "", "Math")

	ns := school.NewStudent{
		Name:      "Ali",
		IDNumber:  "123456789",
		Phone:     "0777000111",
		Age:       16,
		ClassName: "Grade 10",
		Email:     "ali@student.com",
		Password:  "ab,cd",
	}
	if _, err := svc.CreateStudent(ns); !core.IsValidationError(err) {
		t.Fatalf("CreateStudent(comma password) = %v; expected a validation error", err)
	}
	if students, _ := svc.QueryAllStudents(); len(students) != 0 {
		t.Fatalf("student count = %d after rejected create; expected 0", len(students))
	}

	ns.Password = "pass1"
	if _, err := svc.CreateStudent(ns); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	us := school.UpdateStudent{Name: "Ali,Jr"}
	if _, err := svc.UpdateStudent("ali@student.com", us); !core.IsValidationError(err) {
		t.Fatalf("UpdateStudent(comma name) = %v; expected a validation error", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// the files written so far must survive a reload intact
	db, err = flatfile.Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	report, err := db.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(report.Errors) != 0 {
		t.Errorf("Load() errors = %v; expected none", report.Errors)
	}
	if students, _ := db.QueryAllStudents(); len(students) != 1 {
		t.Errorf("student count = %d after reload; expected 1", len(students))
	}
}

func TestServiceClassInputSeparators(t *testing.T) {
	svc, db, _ := setupService(t)

	if _, err := svc.CreateClass(school.NewClass{Name: "Grade,10"}); !core.IsValidationError(err) {
		t.Errorf("CreateClass(comma name) = %v; expected a validation error", err)
	}
	if _, err := svc.CreateClass(school.NewClass{Name: "Grade 10", Subjects: []string{"Socio-Econ"}}); !core.IsValidationError(err) {
		t.Errorf("CreateClass(dashed subject) = %v; expected a validation error", err)
	}

	testutil.CreateClass(t, db, "Grade 10", "")
	if _, err := svc.SetClassSupervisor("Grade 10", "Rasha, Ms"); !core.IsValidationError(err) {
		t.Errorf("SetClassSupervisor(comma) = %v; expected a validation error", err)
	}
	if _, err := svc.AddClassSubject("Grade 10", "A,B"); !core.IsValidationError(err) {
		t.Errorf("AddClassSubject(comma) = %v; expected a validation error", err)
	}

	nt := school.NewTeacher{
		Name:     "Rasha",
		Phone:    "0788000222",
		Email:    "rasha@teacher.com",
		Password: "pass3",
		Subject:  "Phys-Ed",
	}
	if _, err := svc.CreateTeacher(nt); !core.IsValidationError(err) {
		t.Errorf("CreateTeacher(dashed subject) = %v; expected a validation error", err)
	}
}

// The stored grade key must be the class's spelling of the subject, so the
// per-subject views resolve it regardless of the caller's casing.
func TestServiceAssignGradeCanonicalSubjectKey(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "", "Math")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)

	orig := core.Conf.StrictGradeSubjects
	defer func() { core.Conf.StrictGradeSubjects = orig }()
	core.Conf.StrictGradeSubjects = true

	if err := svc.AssignGrade("ali@student.com", "math", 75); err != nil {
		t.Fatalf("AssignGrade(math) failed: %v", err)
	}
	stu, _ := svc.StudentByEmail("ali@student.com")
	if _, ok := stu.Grades["math"]; ok {
		t.Error(`grade stored under "math"; expected the class spelling "Math"`)
	}
	if g, ok := stu.Grades["Math"]; !ok || g != 75 {
		t.Errorf(`Grades["Math"] = %g, %t; expected 75, true`, g, ok)
	}

	if err := svc.RemoveGrade("ali@student.com", "MATH"); err != nil {
		t.Fatalf("RemoveGrade(MATH) failed: %v", err)
	}
	stu, _ = svc.StudentByEmail("ali@student.com")
	if len(stu.Grades) != 0 {
		t.Errorf("Grades = %v after removal; expected none", stu.Grades)
	}
}

func TestServiceDeleteClassInUse(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")
	testutil.CreateClass(t, db, "Grade 11", "")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)
	testutil.CreateTeacher(t, db, "Rasha", "rasha@teacher.com", "pass3", "Math", "Grade 11")

	if err := svc.DeleteClass("Grade 10"); err != school.ErrClassInUse {
		t.Errorf("DeleteClass(with students) = %v; expected %v", err, school.ErrClassInUse)
	}
	if err := svc.DeleteClass("Grade 11"); err != school.ErrClassInUse {
		t.Errorf("DeleteClass(with teacher) = %v; expected %v", err, school.ErrClassInUse)
	}

	if _, err := svc.UnassignTeacherClass("rasha@teacher.com", "Grade 11"); err != nil {
		t.Fatalf("UnassignTeacherClass() failed: %v", err)
	}
	if err := svc.DeleteClass("Grade 11"); err != nil {
		t.Errorf("DeleteClass(unreferenced) failed: %v", err)
	}
}

func TestServiceUpdateStudentEmailCascade(t *testing.T) {
	dir := t.TempDir()
	db, err := flatfile.Open(dir)
	if err != nil {
		t.Fatalf("flatfile.Open() failed: %v", err)
	}
	defer db.Close()
	svc := school.NewService(db, dummyaudit.NewService())

	testutil.CreateClass(t, db, "Grade 10", "", "Math")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)
	if err := svc.AssignGrade("ali@student.com", "Math", 88); err != nil {
		t.Fatalf("AssignGrade() failed: %v", err)
	}

	us := school.UpdateStudent{Email: "ali.new@student.com"}
	if _, err := svc.UpdateStudent("ali@student.com", us); err != nil {
		t.Fatalf("UpdateStudent() failed: %v", err)
	}

	stu, err := svc.StudentByEmail("ali.new@student.com")
	if err != nil {
		t.Fatalf("StudentByEmail(new) failed: %v", err)
	}
	if g, ok := stu.Grade("Math"); !ok || g != 88 {
		t.Errorf("Grade(Math) = %g, %t after email change; expected 88, true", g, ok)
	}

	// the grades file must be re-keyed on disk too
	raw, err := os.ReadFile(filepath.Join(dir, "grades.txt"))
	if err != nil {
		t.Fatalf("reading grades.txt failed: %v", err)
	}
	if !strings.Contains(string(raw), "ali.new@student.com,Math,88") {
		t.Errorf("grades.txt = %q; expected re-keyed grade line", raw)
	}
	if strings.Contains(string(raw), "ali@student.com") {
		t.Errorf("grades.txt still references the old email: %q", raw)
	}
}

func TestServiceStudentsByStatusAndClass(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")
	testutil.CreateClass(t, db, "Grade 11", "")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)
	testutil.CreateStudent(t, db, "Sara", "987654321", "sara@student.com", "pass2", "Grade 10", 15, false)
	testutil.CreateStudent(t, db, "Omar", "111222333", "omar@student.com", "pass3", "Grade 11", 17, true)

	active, err := svc.StudentsByStatus(school.StatusActive)
	if err != nil {
		t.Fatalf("StudentsByStatus() failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("active count = %d; expected 2", len(active))
	}

	inClass, err := svc.StudentsInClass("Grade 10")
	if err != nil {
		t.Fatalf("StudentsInClass() failed: %v", err)
	}
	if len(inClass) != 2 {
		t.Errorf("Grade 10 count = %d; expected 2", len(inClass))
	}
}

func TestServiceQueryClassStats(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")
	testutil.CreateClass(t, db, "Grade 11", "")
	testutil.CreateStudent(t, db, "Ali", "123456789", "ali@student.com", "pass1", "Grade 10", 16, true)
	testutil.CreateStudent(t, db, "Sara", "987654321", "sara@student.com", "pass2", "Grade 10", 15, false)

	stats, err := svc.QueryClassStats()
	if err != nil {
		t.Fatalf("QueryClassStats() failed: %v", err)
	}
	byName := make(map[string]school.ClassStats, len(stats))
	for _, st := range stats {
		byName[st.ClassName] = st
	}
	g10 := byName["Grade 10"]
	if g10.Total != 2 || g10.Active != 1 || g10.Inactive != 1 {
		t.Errorf("Grade 10 stats = %+v; expected total=2 active=1 inactive=1", g10)
	}
	g11 := byName["Grade 11"]
	if g11.Total != 0 {
		t.Errorf("Grade 11 stats = %+v; expected empty", g11)
	}
}

func TestServiceAssignTeacherClass(t *testing.T) {
	svc, db, _ := setupService(t)
	testutil.CreateClass(t, db, "Grade 10", "")
	testutil.CreateTeacher(t, db, "Rasha", "rasha@teacher.com", "pass3", "Math")

	tch, err := svc.AssignTeacherClass("rasha@teacher.com", "Grade 10")
	if err != nil {
		t.Fatalf("AssignTeacherClass() failed: %v", err)
	}
	if !tch.HasClass("Grade 10") {
		t.Error("HasClass(Grade 10) = false after assignment")
	}
	if _, err := svc.AssignTeacherClass("rasha@teacher.com", "Grade 99"); err != school.ErrClassNotFound {
		t.Errorf("AssignTeacherClass(missing class) = %v; expected %v", err, school.ErrClassNotFound)
	}
}

func TestServiceLogActionUnknownUser(t *testing.T) {
	svc, _, audit := setupService(t)

	svc.LogAction("poked around")
	entries := audit.Entries()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d; expected 1", len(entries))
	}
	if !strings.Contains(entries[0], "Unknown user: poked around") {
		t.Errorf("entry = %q; expected attribution to Unknown user", entries[0])
	}
	if !strings.HasPrefix(entries[0], "[") {
		t.Errorf("entry = %q; expected leading timestamp", entries[0])
	}
}
