package testutil

import (
	"testing"

	"github.com/miraalabed/schoolsys/core/school"
)

func CreateClass(
	t *testing.T,
	repo school.Repository,
	name, supervisor string,
	subjects ...string,
) school.SchoolClass {
	cls := school.SchoolClass{Name: name, Supervisor: supervisor, Subjects: subjects}
	if err := repo.CreateClass(cls); err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(
	t *testing.T,
	repo school.Repository,
	name, id, email, pwd, className string,
	age int,
	active bool,
) school.Student {
	status := school.StatusActive
	if !active {
		status = school.StatusDeactive
	}
	stu := school.Student{
		User: school.User{
			Name:     name,
			Phone:    "0777000111",
			Email:    email,
			Password: pwd,
			Role:     school.RoleStudent,
		},
		IDNumber:  id,
		Age:       age,
		ClassName: className,
		Status:    status,
	}
	if err := repo.CreateStudent(stu); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreateTeacher(
	t *testing.T,
	repo school.Repository,
	name, email, pwd, subject string,
	classNames ...string,
) school.Teacher {
	tch := school.Teacher{
		User: school.User{
			Name:     name,
			Phone:    "0788000222",
			Email:    email,
			Password: pwd,
			Role:     school.RoleTeacher,
		},
		Subject:    subject,
		ClassNames: classNames,
	}
	if err := repo.CreateTeacher(tch); err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tch
}
