package flatfile

import "github.com/miraalabed/schoolsys/core/school"

func copyClass(c school.SchoolClass) school.SchoolClass {
	if c.Subjects != nil {
		c.Subjects = append([]string(nil), c.Subjects...)
	}
	return c
}

func (db *Store) CreateClass(c school.SchoolClass) error {
	if _, ok := db.classes[c.Name]; ok {
		return school.ErrClassExists
	}
	db.classes[c.Name] = copyClass(c)
	return db.saveClasses()
}

func (db *Store) GetClass(name string) (school.SchoolClass, error) {
	if cls, ok := db.classes[name]; ok {
		return copyClass(cls), nil
	}
	return school.SchoolClass{}, school.ErrClassNotFound
}

func (db *Store) QueryAllClasses() ([]school.SchoolClass, error) {
	res := make([]school.SchoolClass, 0, len(db.classes))
	for _, cls := range db.classes {
		res = append(res, copyClass(cls))
	}
	sortClasses(res)
	return res, nil
}

func (db *Store) UpdateClass(c school.SchoolClass) error {
	if _, ok := db.classes[c.Name]; !ok {
		return school.ErrClassNotFound
	}
	db.classes[c.Name] = copyClass(c)
	return db.saveClasses()
}

func (db *Store) DeleteClass(name string) error {
	if _, ok := db.classes[name]; !ok {
		return school.ErrClassNotFound
	}
	delete(db.classes, name)
	return db.saveClasses()
}
