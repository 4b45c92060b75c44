package flatfile

import "github.com/miraalabed/schoolsys/core/school"

func copyTeacher(t school.Teacher) school.Teacher {
	if t.ClassNames != nil {
		t.ClassNames = append([]string(nil), t.ClassNames...)
	}
	return t
}

func (db *Store) CreateTeacher(t school.Teacher) error {
	if _, ok := db.teachers[t.Email]; ok {
		return school.ErrEmailExists
	}
	db.teachers[t.Email] = copyTeacher(t)
	return db.saveTeachers()
}

func (db *Store) GetTeacherByEmail(email string) (school.Teacher, error) {
	if tch, ok := db.teachers[email]; ok {
		return copyTeacher(tch), nil
	}
	return school.Teacher{}, school.ErrTeacherNotFound
}

func (db *Store) QueryAllTeachers() ([]school.Teacher, error) {
	res := make([]school.Teacher, 0, len(db.teachers))
	for _, tch := range db.teachers {
		res = append(res, copyTeacher(tch))
	}
	sortTeachers(res)
	return res, nil
}

func (db *Store) UpdateTeacher(email string, t school.Teacher) error {
	if _, ok := db.teachers[email]; !ok {
		return school.ErrTeacherNotFound
	}
	if t.Email != email {
		delete(db.teachers, email)
	}
	db.teachers[t.Email] = copyTeacher(t)
	return db.saveTeachers()
}

func (db *Store) DeleteTeacher(email string) error {
	if _, ok := db.teachers[email]; !ok {
		return school.ErrTeacherNotFound
	}
	delete(db.teachers, email)
	return db.saveTeachers()
}
