package flatfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/miraalabed/schoolsys/core/school"
)

const (
	classesFile  = "classes.txt"
	studentsFile = "students.txt"
	teachersFile = "teachers.txt"
	gradesFile   = "grades.txt"
	lockFile     = ".lock"
)

// ErrStoreLocked is returned by Open when another session holds the store.
var ErrStoreLocked = errors.New("data store is locked by another session")

// Store is a flat-file backed school.Repository. Entities live in memory;
// every mutation rewrites the owning file in full via an atomic
// write-to-temp-then-rename. A lock file enforces the single-writer
// discipline the format assumes.
type Store struct {
	dir string

	classes  map[string]school.SchoolClass // by name
	teachers map[string]school.Teacher     // by email
	students []school.Student              // scanned by email/idNumber
}

var _ school.Repository = (*Store)(nil)

// Open prepares dir and takes the advisory store lock.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "flatfile.Open")
	}
	f, err := os.OpenFile(filepath.Join(dir, lockFile), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrStoreLocked
		}
		return nil, errors.Wrap(err, "flatfile.Open")
	}
	_ = f.Close()
	return &Store{
		dir:      dir,
		classes:  make(map[string]school.SchoolClass),
		teachers: make(map[string]school.Teacher),
	}, nil
}

// Close releases the store lock.
func (db *Store) Close() error {
	return errors.Wrap(os.Remove(filepath.Join(db.dir, lockFile)), "flatfile.Close")
}

// LineError reports a malformed or unresolvable record. Line 0 refers to the
// file as a whole.
type LineError struct {
	File string
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

// LoadReport collects the per-line errors of a Load; none of them abort it.
type LoadReport struct {
	Errors []LineError
}

func (r *LoadReport) add(file string, line int, err error) {
	r.Errors = append(r.Errors, LineError{File: file, Line: line, Err: err})
}

// Load reads all four files into memory. Order matters: classes first so
// student and teacher class references can be resolved, grades last since
// they attach to loaded students. Malformed lines are reported and skipped.
func (db *Store) Load() (*LoadReport, error) {
	report := &LoadReport{}

	if err := db.loadClasses(report); err != nil {
		return report, err
	}
	if err := db.loadTeachers(report); err != nil {
		return report, err
	}
	if err := db.loadStudents(report); err != nil {
		return report, err
	}
	if err := db.loadGrades(report); err != nil {
		return report, err
	}
	return report, nil
}

func (db *Store) loadClasses(report *LoadReport) error {
	return db.readLines(classesFile, report, func(n int, line string) {
		cls, err := decodeClass(line)
		if err != nil {
			report.add(classesFile, n, err)
			return
		}
		if _, ok := db.classes[cls.Name]; ok {
			report.add(classesFile, n, school.ErrClassExists)
			return
		}
		db.classes[cls.Name] = cls
	})
}

func (db *Store) loadTeachers(report *LoadReport) error {
	return db.readLines(teachersFile, report, func(n int, line string) {
		tch, err := decodeTeacher(line)
		if err != nil {
			report.add(teachersFile, n, err)
			return
		}
		for _, cn := range tch.ClassNames {
			if _, ok := db.classes[cn]; !ok {
				report.add(teachersFile, n, fmt.Errorf("class %q not found for teacher %s", cn, tch.Name))
				return
			}
		}
		if _, ok := db.teachers[tch.Email]; ok {
			report.add(teachersFile, n, school.ErrEmailExists)
			return
		}
		db.teachers[tch.Email] = tch
	})
}

func (db *Store) loadStudents(report *LoadReport) error {
	return db.readLines(studentsFile, report, func(n int, line string) {
		stu, err := decodeStudent(line)
		if err != nil {
			report.add(studentsFile, n, err)
			return
		}
		if _, ok := db.classes[stu.ClassName]; !ok {
			report.add(studentsFile, n, fmt.Errorf("class %q not found for student %s", stu.ClassName, stu.Name))
			return
		}
		if err := db.CheckEmailUniqueness(stu.Email); err != nil {
			report.add(studentsFile, n, err)
			return
		}
		if err := db.CheckIDNumberUniqueness(stu.IDNumber); err != nil {
			report.add(studentsFile, n, err)
			return
		}
		db.students = append(db.students, stu)
	})
}

func (db *Store) loadGrades(report *LoadReport) error {
	return db.readLines(gradesFile, report, func(n int, line string) {
		email, subject, grade, err := decodeGrade(line)
		if err != nil {
			report.add(gradesFile, n, err)
			return
		}
		idx := db.findStudent(email)
		if idx < 0 {
			report.add(gradesFile, n, fmt.Errorf("no student with email %q", email))
			return
		}
		if err := db.students[idx].AddOrUpdateGrade(subject, grade); err != nil {
			report.add(gradesFile, n, err)
		}
	})
}

// readLines feeds every non-empty line of name to fn. A missing file is
// recorded in the report and otherwise ignored; a fresh store has no files
// yet.
func (db *Store) readLines(name string, report *LoadReport, fn func(n int, line string)) error {
	f, err := os.Open(filepath.Join(db.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			report.add(name, 0, errors.New("file not found"))
			return nil
		}
		return errors.Wrapf(err, "flatfile: reading %s", name)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(n, line)
	}
	return errors.Wrapf(scanner.Err(), "flatfile: reading %s", name)
}

// writeFile rewrites name from lines, going through a temp file and rename so
// a crash mid-write cannot leave a half-written file behind.
func (db *Store) writeFile(name string, lines []string) error {
	path := filepath.Join(db.dir, name)
	tmp := path + ".tmp"

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "flatfile: writing %s", name)
	}
	return errors.Wrapf(os.Rename(tmp, path), "flatfile: replacing %s", name)
}

func (db *Store) saveClasses() error {
	names := make([]string, 0, len(db.classes))
	for name := range db.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, encodeClass(db.classes[name]))
	}
	return db.writeFile(classesFile, lines)
}

func (db *Store) saveTeachers() error {
	emails := make([]string, 0, len(db.teachers))
	for email := range db.teachers {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	lines := make([]string, 0, len(emails))
	for _, email := range emails {
		lines = append(lines, encodeTeacher(db.teachers[email]))
	}
	return db.writeFile(teachersFile, lines)
}

func (db *Store) saveStudents() error {
	lines := make([]string, 0, len(db.students))
	for _, stu := range db.students {
		lines = append(lines, encodeStudent(stu))
	}
	return db.writeFile(studentsFile, lines)
}

func (db *Store) saveGrades() error {
	var lines []string
	for _, stu := range db.students {
		lines = append(lines, encodeGrades(stu)...)
	}
	return db.writeFile(gradesFile, lines)
}

func sortClasses(cs []school.SchoolClass) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
}

func sortTeachers(ts []school.Teacher) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Email < ts[j].Email })
}

func (db *Store) findStudent(email string) int {
	for i := range db.students {
		if db.students[i].Email == email {
			return i
		}
	}
	return -1
}

func (db *Store) CheckEmailUniqueness(email string, excluded ...string) error {
	for _, x := range excluded {
		if email == x {
			return nil
		}
	}
	for i := range db.students {
		if db.students[i].Email == email {
			return school.ErrEmailExists
		}
	}
	if _, ok := db.teachers[email]; ok {
		return school.ErrEmailExists
	}
	return nil
}

func (db *Store) CheckIDNumberUniqueness(id string, excluded ...string) error {
	for _, x := range excluded {
		if id == x {
			return nil
		}
	}
	for i := range db.students {
		if db.students[i].IDNumber == id {
			return school.ErrIDNumberExists
		}
	}
	return nil
}
