package flatfile

import "github.com/miraalabed/schoolsys/core/school"

func copyStudent(s school.Student) school.Student {
	if s.Grades != nil {
		grades := make(map[string]float64, len(s.Grades))
		for subj, g := range s.Grades {
			grades[subj] = g
		}
		s.Grades = grades
	}
	return s
}

func (db *Store) CreateStudent(s school.Student) error {
	if err := db.CheckEmailUniqueness(s.Email); err != nil {
		return err
	}
	if err := db.CheckIDNumberUniqueness(s.IDNumber); err != nil {
		return err
	}
	db.students = append(db.students, copyStudent(s))
	return db.saveStudents()
}

func (db *Store) GetStudentByEmail(email string) (school.Student, error) {
	if idx := db.findStudent(email); idx >= 0 {
		return copyStudent(db.students[idx]), nil
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (db *Store) GetStudentByIDNumber(id string) (school.Student, error) {
	for i := range db.students {
		if db.students[i].IDNumber == id {
			return copyStudent(db.students[i]), nil
		}
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (db *Store) QueryAllStudents() ([]school.Student, error) {
	res := make([]school.Student, 0, len(db.students))
	for i := range db.students {
		res = append(res, copyStudent(db.students[i]))
	}
	return res, nil
}

// UpdateStudent replaces the record stored under email. Grades key on the
// student's email, so the grades file is rewritten along with the students
// file; an email change therefore re-keys the grade lines too.
func (db *Store) UpdateStudent(email string, s school.Student) error {
	idx := db.findStudent(email)
	if idx < 0 {
		return school.ErrStudentNotFound
	}
	db.students[idx] = copyStudent(s)
	if err := db.saveStudents(); err != nil {
		return err
	}
	return db.saveGrades()
}

func (db *Store) DeleteStudent(email string) error {
	idx := db.findStudent(email)
	if idx < 0 {
		return school.ErrStudentNotFound
	}
	db.students = append(db.students[:idx], db.students[idx+1:]...)
	if err := db.saveStudents(); err != nil {
		return err
	}
	return db.saveGrades()
}
