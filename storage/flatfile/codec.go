package flatfile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/miraalabed/schoolsys/core/school"
)

// Line formats, one record per line, fields comma-separated:
//
//	classes.txt:  name,supervisor,subjects          (subjects joined with '-')
//	students.txt: name,idNumber,role,phone,age,className,email,password,status
//	teachers.txt: name,email,phone,password,subject[,className...]  (0-4 classes)
//	grades.txt:   email,subject,grade
//
// An empty supervisor field encodes "Unassigned".

const fieldSep = ","

func encodeClass(c school.SchoolClass) string {
	return strings.Join([]string{c.Name, c.Supervisor, strings.Join(c.Subjects, "-")}, fieldSep)
}

func decodeClass(line string) (school.SchoolClass, error) {
	parts := strings.Split(line, fieldSep)
	if len(parts) != 3 {
		return school.SchoolClass{}, fmt.Errorf("want 3 fields, got %d", len(parts))
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return school.SchoolClass{}, fmt.Errorf("class name must not be empty")
	}
	var subjects []string
	if s := strings.TrimSpace(parts[2]); s != "" {
		subjects = strings.Split(s, "-")
	}
	return school.SchoolClass{
		Name:       name,
		Supervisor: strings.TrimSpace(parts[1]),
		Subjects:   subjects,
	}, nil
}

func encodeStudent(s school.Student) string {
	return strings.Join([]string{
		s.Name,
		s.IDNumber,
		school.RoleStudent,
		s.Phone,
		strconv.Itoa(s.Age),
		s.ClassName,
		s.Email,
		s.Password,
		s.Status,
	}, fieldSep)
}

func decodeStudent(line string) (school.Student, error) {
	parts := strings.Split(line, fieldSep)
	if len(parts) != 9 {
		return school.Student{}, fmt.Errorf("want 9 fields, got %d", len(parts))
	}
	if role := strings.ToLower(strings.TrimSpace(parts[2])); role != school.RoleStudent {
		return school.Student{}, fmt.Errorf("unexpected role %q", parts[2])
	}
	age, err := strconv.Atoi(strings.TrimSpace(parts[4]))
	if err != nil {
		return school.Student{}, fmt.Errorf("invalid age %q", parts[4])
	}
	status := strings.ToLower(strings.TrimSpace(parts[8]))
	if status != school.StatusActive && status != school.StatusDeactive {
		return school.Student{}, fmt.Errorf("unknown status %q", parts[8])
	}
	return school.Student{
		User: school.User{
			Name:     strings.TrimSpace(parts[0]),
			Phone:    strings.TrimSpace(parts[3]),
			Email:    strings.ToLower(strings.TrimSpace(parts[6])),
			Password: parts[7],
			Role:     school.RoleStudent,
		},
		IDNumber:  strings.TrimSpace(parts[1]),
		Age:       age,
		ClassName: strings.TrimSpace(parts[5]),
		Status:    status,
	}, nil
}

func encodeTeacher(t school.Teacher) string {
	fields := []string{t.Name, t.Email, t.Phone, t.Password, t.Subject}
	fields = append(fields, t.ClassNames...)
	return strings.Join(fields, fieldSep)
}

func decodeTeacher(line string) (school.Teacher, error) {
	parts := strings.Split(line, fieldSep)
	if len(parts) < 5 {
		return school.Teacher{}, fmt.Errorf("want at least 5 fields, got %d", len(parts))
	}
	if len(parts) > 5+school.MaxTeacherClasses {
		return school.Teacher{}, fmt.Errorf("too many class references (max %d)", school.MaxTeacherClasses)
	}
	var classNames []string
	for _, cn := range parts[5:] {
		cn = strings.TrimSpace(cn)
		if cn == "" {
			continue
		}
		classNames = append(classNames, cn)
	}
	return school.Teacher{
		User: school.User{
			Name:     strings.TrimSpace(parts[0]),
			Phone:    strings.TrimSpace(parts[2]),
			Email:    strings.ToLower(strings.TrimSpace(parts[1])),
			Password: parts[3],
			Role:     school.RoleTeacher,
		},
		Subject:    strings.TrimSpace(parts[4]),
		ClassNames: classNames,
	}, nil
}

// encodeGrades emits one line per (student, subject, grade) triple, subjects
// sorted for a stable file.
func encodeGrades(s school.Student) []string {
	subjects := make([]string, 0, len(s.Grades))
	for subj := range s.Grades {
		subjects = append(subjects, subj)
	}
	sort.Strings(subjects)
	lines := make([]string, 0, len(subjects))
	for _, subj := range subjects {
		grade := strconv.FormatFloat(s.Grades[subj], 'f', -1, 64)
		lines = append(lines, strings.Join([]string{s.Email, subj, grade}, fieldSep))
	}
	return lines
}

func decodeGrade(line string) (email, subject string, grade float64, err error) {
	parts := strings.Split(line, fieldSep)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("want 3 fields, got %d", len(parts))
	}
	grade, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid grade %q", parts[2])
	}
	return strings.ToLower(strings.TrimSpace(parts[0])), strings.TrimSpace(parts[1]), grade, nil
}
