package school

import (
	"strings"

	"github.com/miraalabed/schoolsys/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Student account statuses
const (
	StatusActive   = "active"
	StatusDeactive = "deactive"
)

// MaxTeacherClasses caps how many classes a single teacher may be assigned.
const MaxTeacherClasses = 4

var AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

// RoleFromEmail maps an email's domain suffix to a role: addresses under
// @admin.*, @teacher.* and @student.* resolve to the matching role.
// Unknown domains resolve to "".
func RoleFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	domain := strings.ToLower(email[at+1:])
	for _, role := range AllRoles {
		if strings.HasPrefix(domain, role+".") {
			return role
		}
	}
	return ""
}

// User holds the account fields shared by every person in the system.
// Role is set once at creation and never changes.
type User struct {
	Name     string
	Phone    string
	Email    string
	Password string
	Role     string
}

type Student struct {
	User
	IDNumber  string
	Age       int
	ClassName string // key into the class registry, not an owned object
	Status    string
	Grades    map[string]float64 // subject -> grade
}

func (s *Student) IsActive() bool { return s.Status == StatusActive }

func (s *Student) Activate()   { s.Status = StatusActive }
func (s *Student) Deactivate() { s.Status = StatusDeactive }

// AddOrUpdateGrade sets the grade for subject, overwriting any previous value.
// The grade must be within [0,100]. Whether subject belongs to the student's
// class is not checked here; the service enforces that policy.
func (s *Student) AddOrUpdateGrade(subject string, grade float64) error {
	if grade < 0 || grade > 100 {
		return core.NewValidationError(
			ErrGradeOutOfRange,
			core.FieldError{Field: "grade", Error: ErrGradeOutOfRange.Error()},
		)
	}
	if s.Grades == nil {
		s.Grades = make(map[string]float64, 1)
	}
	s.Grades[subject] = grade
	return nil
}

// RemoveGrade deletes the grade for subject, matching case-insensitively;
// a missing subject is a no-op.
func (s *Student) RemoveGrade(subject string) {
	for key := range s.Grades {
		if strings.EqualFold(key, subject) {
			delete(s.Grades, key)
			return
		}
	}
}

// Grade returns the recorded grade for subject, if any. Subjects match
// case-insensitively, like HasSubject.
func (s *Student) Grade(subject string) (float64, bool) {
	if g, ok := s.Grades[subject]; ok {
		return g, true
	}
	for key, g := range s.Grades {
		if strings.EqualFold(key, subject) {
			return g, true
		}
	}
	return 0, false
}

type Teacher struct {
	User
	Subject    string
	ClassNames []string // keys into the class registry, ordered, no duplicates
}

// AssignClass appends a class reference, refusing duplicates and more than
// MaxTeacherClasses entries.
func (t *Teacher) AssignClass(name string) error {
	for _, cn := range t.ClassNames {
		if cn == name {
			return ErrClassAlreadyAssigned
		}
	}
	if len(t.ClassNames) >= MaxTeacherClasses {
		return ErrTooManyClasses
	}
	t.ClassNames = append(t.ClassNames, name)
	return nil
}

func (t *Teacher) UnassignClass(name string) error {
	for i, cn := range t.ClassNames {
		if cn == name {
			t.ClassNames = append(t.ClassNames[:i], t.ClassNames[i+1:]...)
			return nil
		}
	}
	return ErrClassNotAssigned
}

func (t *Teacher) HasClass(name string) bool {
	for _, cn := range t.ClassNames {
		if cn == name {
			return true
		}
	}
	return false
}

type SchoolClass struct {
	Name       string
	Subjects   []string // ordered, unique case-insensitively
	Supervisor string   // teacher name, "" when unassigned
}

// SupervisorName returns the supervisor for display, defaulting to "Unassigned".
func (c *SchoolClass) SupervisorName() string {
	if c.Supervisor == "" {
		return "Unassigned"
	}
	return c.Supervisor
}

func (c *SchoolClass) HasSubject(subject string) bool {
	for _, s := range c.Subjects {
		if strings.EqualFold(s, subject) {
			return true
		}
	}
	return false
}

// AddSubject appends subject to the class; subject names are unique
// case-insensitively and may not contain ',' or '-', the record field and
// subject-list separators.
func (c *SchoolClass) AddSubject(subject string) error {
	subject = core.CleanString(subject)
	if subject == "" {
		return core.NewValidationError(
			ErrEmptySubject,
			core.FieldError{Field: "subject", Error: ErrEmptySubject.Error()},
		)
	}
	if strings.ContainsAny(subject, ",-") {
		return core.NewValidationError(
			ErrSubjectBadChars,
			core.FieldError{Field: "subject", Error: ErrSubjectBadChars.Error()},
		)
	}
	if c.HasSubject(subject) {
		return ErrDuplicateSubject
	}
	c.Subjects = append(c.Subjects, subject)
	return nil
}

func (c *SchoolClass) RemoveSubject(subject string) error {
	for i, s := range c.Subjects {
		if strings.EqualFold(s, subject) {
			c.Subjects = append(c.Subjects[:i], c.Subjects[i+1:]...)
			return nil
		}
	}
	return ErrSubjectNotFound
}

// NewStudent contains information needed to create a new Student.
// Free-text fields exclude ',' (0x2C), the record files' field separator.
type NewStudent struct {
	Name      string `json:"name" validate:"required,excludesall=0x2C"`
	IDNumber  string `json:"id_number" validate:"required,len=9,numeric"`
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
	Age       int    `json:"age" validate:"required,gte=5,lte=20"`
	ClassName string `json:"class_name" validate:"required,excludesall=0x2C"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=4,max=8,excludesall=0x2C"`
}

func (ns *NewStudent) Validate(svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.ClassName = core.CleanString(ns.ClassName)

	if err := core.Validate.Struct(ns); err != nil {
		return core.TranslateError(err)
	}
	if err := svc.CheckEmailAvailable(ns.Email); err != nil {
		return err
	}
	return svc.CheckIDNumberAvailable(ns.IDNumber)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. Zero-valued fields keep the original value.
type UpdateStudent struct {
	Name      string `json:"name" validate:"omitempty,excludesall=0x2C"`
	Phone     string `json:"phone" validate:"omitempty,len=10,numeric"`
	Age       int    `json:"age" validate:"omitempty,gte=5,lte=20"`
	ClassName string `json:"class_name" validate:"omitempty,excludesall=0x2C"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func (us *UpdateStudent) Validate(orig Student, svc *Service) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.ClassName = core.CleanString(us.ClassName)

	if us.Name == "" {
		us.Name = orig.Name
	}
	if us.Phone == "" {
		us.Phone = orig.Phone
	}
	if us.Age == 0 {
		us.Age = orig.Age
	}
	if us.ClassName == "" {
		us.ClassName = orig.ClassName
	}
	if us.Email == "" {
		us.Email = orig.Email
	}

	if err := core.Validate.Struct(us); err != nil {
		return core.TranslateError(err)
	}
	return svc.CheckEmailAvailable(us.Email, orig.Email)
}

// NewTeacher contains information needed to create a new Teacher.
// Subject additionally excludes '-', the subject-list separator.
type NewTeacher struct {
	Name       string   `json:"name" validate:"required,excludesall=0x2C"`
	Phone      string   `json:"phone" validate:"required,len=10,numeric"`
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=4,max=8,excludesall=0x2C"`
	Subject    string   `json:"subject" validate:"required,excludesall=0x2C-"`
	ClassNames []string `json:"class_names" validate:"omitempty,max=4,unique"`
}

func (nt *NewTeacher) Validate(svc *Service) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Subject = core.CleanString(nt.Subject)

	if err := core.Validate.Struct(nt); err != nil {
		return core.TranslateError(err)
	}
	for _, cn := range nt.ClassNames {
		if _, err := svc.repo.GetClass(cn); err != nil {
			return ErrClassNotFound
		}
	}
	return svc.CheckEmailAvailable(nt.Email)
}

// UpdateTeacher defines the self-serviceable Teacher fields. Zero-valued
// fields keep the original value.
type UpdateTeacher struct {
	Name     string `json:"name" validate:"omitempty,excludesall=0x2C"`
	Phone    string `json:"phone" validate:"omitempty,len=10,numeric"`
	Password string `json:"password" validate:"omitempty,min=4,max=8,excludesall=0x2C"`
}

func (ut *UpdateTeacher) Validate(orig Teacher) error {
	ut.Name = core.CleanString(ut.Name)
	if ut.Name == "" {
		ut.Name = orig.Name
	}
	if ut.Phone == "" {
		ut.Phone = orig.Phone
	}
	if err := core.Validate.Struct(ut); err != nil {
		return core.TranslateError(err)
	}
	return nil
}

// NewClass contains information needed to register a new SchoolClass.
type NewClass struct {
	Name       string   `json:"name" validate:"required,excludesall=0x2C"`
	Subjects   []string `json:"subjects"`
	Supervisor string   `json:"supervisor" validate:"omitempty,excludesall=0x2C"`
}

func (nc *NewClass) Validate(svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Supervisor = core.CleanString(nc.Supervisor)

	if err := core.Validate.Struct(nc); err != nil {
		return core.TranslateError(err)
	}
	// subject names are unique case-insensitively
	seen := make(map[string]bool, len(nc.Subjects))
	for i, s := range nc.Subjects {
		s = core.CleanString(s)
		nc.Subjects[i] = s
		if s == "" {
			return core.NewValidationError(
				ErrEmptySubject,
				core.FieldError{Field: "subjects", Error: ErrEmptySubject.Error()},
			)
		}
		if strings.ContainsAny(s, ",-") {
			return core.NewValidationError(
				ErrSubjectBadChars,
				core.FieldError{Field: "subjects", Error: ErrSubjectBadChars.Error()},
			)
		}
		key := strings.ToLower(s)
		if seen[key] {
			return core.NewValidationError(
				ErrDuplicateSubject,
				core.FieldError{Field: "subjects", Error: ErrDuplicateSubject.Error()},
			)
		}
		seen[key] = true
	}
	if _, err := svc.repo.GetClass(nc.Name); err == nil {
		return ErrClassExists
	}
	return nil
}
