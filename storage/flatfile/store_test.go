package flatfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miraalabed/schoolsys/core/school"
)

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s failed: %v", name, err)
	}
}

func TestOpenLock(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if _, err := Open(dir); err != ErrStoreLocked {
		t.Errorf("second Open() = %v; expected %v", err, ErrStoreLocked)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	db, err = Open(dir)
	if err != nil {
		t.Errorf("Open() after Close() failed: %v", err)
	}
	db.Close()
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, classesFile, "Grade 10,Ms. Rasha,Math-Science-English\n")
	writeTestFile(t, dir, teachersFile, "Rasha,rasha@teacher.com,0788000222,pass3,Math,Grade 10\n")
	writeTestFile(t, dir, studentsFile,
		"Ali,123456789,student,0777000111,16,Grade 10,ali@student.com,pass1,active\n")
	writeTestFile(t, dir, gradesFile, "ali@student.com,Math,88\n")

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	report, err := db.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(report.Errors) != 0 {
		t.Errorf("Load() errors = %v; expected none", report.Errors)
	}

	stu, err := db.GetStudentByEmail("ali@student.com")
	if err != nil {
		t.Fatalf("GetStudentByEmail() failed: %v", err)
	}
	if g, ok := stu.Grade("Math"); !ok || g != 88 {
		t.Errorf("Grade(Math) = %g, %t; expected 88, true", g, ok)
	}

	tch, err := db.GetTeacherByEmail("rasha@teacher.com")
	if err != nil {
		t.Fatalf("GetTeacherByEmail() failed: %v", err)
	}
	if !tch.HasClass("Grade 10") {
		t.Error("HasClass(Grade 10) = false after load")
	}
}

func TestLoadSkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, classesFile, "Grade 10,,Math\n")
	writeTestFile(t, dir, teachersFile, strings.Join([]string{
		"Rasha,rasha@teacher.com,0788000222,pass3,Math",
		"Bad,bad@teacher.com,000,pw", // too few fields
		"Lost,lost@teacher.com,0788000333,pass4,Art,Grade 99", // unknown class
	}, "\n")+"\n")
	writeTestFile(t, dir, studentsFile, strings.Join([]string{
		"Ali,123456789,student,0777000111,16,Grade 10,ali@student.com,pass1,active",
		"Dup,123456789,student,0777000222,15,Grade 10,dup@student.com,pass2,active", // dup id
		"Sara,987654321,student,0777000333,notanage,Grade 10,sara@student.com,pass3,active",
	}, "\n")+"\n")
	writeTestFile(t, dir, gradesFile, strings.Join([]string{
		"ali@student.com,Math,88",
		"ghost@student.com,Math,50", // unknown student
		"ali@student.com,Math,150",  // out of range
	}, "\n")+"\n")

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	report, err := db.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(report.Errors) != 6 {
		t.Errorf("Load() reported %d errors (%v); expected 6", len(report.Errors), report.Errors)
	}

	students, _ := db.QueryAllStudents()
	if len(students) != 1 {
		t.Errorf("student count = %d; expected 1", len(students))
	}
	teachers, _ := db.QueryAllTeachers()
	if len(teachers) != 1 {
		t.Errorf("teacher count = %d; expected 1", len(teachers))
	}
	stu, _ := db.GetStudentByEmail("ali@student.com")
	if g, _ := stu.Grade("Math"); g != 88 {
		t.Errorf("Grade(Math) = %g; expected the out-of-range line to be skipped", g)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	report, err := db.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	// all four files are reported missing on a fresh store
	if len(report.Errors) != 4 {
		t.Errorf("Load() reported %d errors; expected 4", len(report.Errors))
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	cls := school.SchoolClass{Name: "Grade 10", Subjects: []string{"Math"}}
	if err := db.CreateClass(cls); err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	stu := school.Student{
		User: school.User{
			Name: "Ali", Phone: "0777000111", Email: "ali@student.com",
			Password: "pass1", Role: school.RoleStudent,
		},
		IDNumber: "123456789", Age: 16, ClassName: "Grade 10",
		Status: school.StatusActive,
	}
	if err := db.CreateStudent(stu); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	stu.Grades = map[string]float64{"Math": 95}
	if err := db.UpdateStudent(stu.Email, stu); err != nil {
		t.Fatalf("UpdateStudent() failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	if report, err := db.Load(); err != nil || len(report.Errors) != 0 {
		t.Fatalf("Load() = %v, %v; expected clean load", report.Errors, err)
	}

	got, err := db.GetStudentByEmail("ali@student.com")
	if err != nil {
		t.Fatalf("GetStudentByEmail() failed: %v", err)
	}
	if g, ok := got.Grade("Math"); !ok || g != 95 {
		t.Errorf("Grade(Math) = %g, %t after reopen; expected 95, true", g, ok)
	}
	if _, err := db.GetClass("Grade 10"); err != nil {
		t.Errorf("GetClass() failed after reopen: %v", err)
	}
}

func TestUpdateTeacherRekeysEmail(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	tch := school.Teacher{
		User: school.User{
			Name: "Rasha", Phone: "0788000222", Email: "rasha@teacher.com",
			Password: "pass3", Role: school.RoleTeacher,
		},
		Subject: "Math",
	}
	if err := db.CreateTeacher(tch); err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}

	tch.Email = "rasha.new@teacher.com"
	if err := db.UpdateTeacher("rasha@teacher.com", tch); err != nil {
		t.Fatalf("UpdateTeacher() failed: %v", err)
	}
	if _, err := db.GetTeacherByEmail("rasha@teacher.com"); err != school.ErrTeacherNotFound {
		t.Errorf("GetTeacherByEmail(old) = %v; expected %v", err, school.ErrTeacherNotFound)
	}
	if _, err := db.GetTeacherByEmail("rasha.new@teacher.com"); err != nil {
		t.Errorf("GetTeacherByEmail(new) failed: %v", err)
	}
}

func TestRepositoryReturnsCopies(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if err := db.CreateClass(school.SchoolClass{Name: "Grade 10", Subjects: []string{"Math"}}); err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	cls, _ := db.GetClass("Grade 10")
	cls.Subjects[0] = "Mutated"

	again, _ := db.GetClass("Grade 10")
	if again.Subjects[0] != "Math" {
		t.Error("mutating a returned class leaked into the store")
	}
}
