package school

import (
	"fmt"
	"strings"
	"time"

	"github.com/miraalabed/schoolsys/core"
)

var nowFunc = time.Now // mockable

type (
	// Repository is the authoritative store of school entities for the
	// running session. Mutating calls persist before returning.
	Repository interface {
		// classes
		CreateClass(c SchoolClass) error
		GetClass(name string) (SchoolClass, error)
		QueryAllClasses() ([]SchoolClass, error)
		UpdateClass(c SchoolClass) error
		DeleteClass(name string) error

		// teachers
		CreateTeacher(t Teacher) error
		GetTeacherByEmail(email string) (Teacher, error)
		QueryAllTeachers() ([]Teacher, error)
		// UpdateTeacher replaces the teacher stored under email; a changed
		// t.Email re-keys the record.
		UpdateTeacher(email string, t Teacher) error
		DeleteTeacher(email string) error

		// students
		CreateStudent(s Student) error
		GetStudentByEmail(email string) (Student, error)
		GetStudentByIDNumber(id string) (Student, error)
		QueryAllStudents() ([]Student, error)
		// UpdateStudent replaces the student stored under email; grades are
		// keyed on email so the grades file is rewritten along with the
		// students file.
		UpdateStudent(email string, s Student) error
		DeleteStudent(email string) error

		CheckEmailUniqueness(email string, excluded ...string) error
		CheckIDNumberUniqueness(id string, excluded ...string) error
	}

	Service struct {
		repo  Repository
		audit core.AuditService

		actorRole string
		actorName string
	}
)

func NewService(repo Repository, audit core.AuditService) *Service {
	return &Service{repo: repo, audit: audit}
}

// SetActor records who performs subsequent operations; every mutating or
// security-relevant call emits one audit entry attributed to this actor.
func (svc *Service) SetActor(role, name string) {
	svc.actorRole = role
	svc.actorName = name
}

// LogAction appends one audit entry attributed to the current actor.
func (svc *Service) LogAction(format string, args ...interface{}) {
	actor := "Unknown user"
	if svc.actorRole != "" && svc.actorName != "" {
		actor = strings.Title(svc.actorRole) + " " + svc.actorName
	}
	entry := fmt.Sprintf(
		"[%s] %s: %s",
		nowFunc().Format("2006-01-02 15:04:05"), actor, fmt.Sprintf(format, args...),
	)
	svc.audit.Append(entry)
}

// CheckEmailAvailable fails when email is the reserved admin address or is
// already used by any student or teacher, excluded addresses aside.
func (svc *Service) CheckEmailAvailable(email string, excluded ...string) error {
	if email == core.Conf.AdminEmail {
		return ErrEmailReserved
	}
	return svc.repo.CheckEmailUniqueness(email, excluded...)
}

func (svc *Service) CheckIDNumberAvailable(id string, excluded ...string) error {
	return svc.repo.CheckIDNumberUniqueness(id, excluded...)
}

// ---------- Students ----------

func (svc *Service) CreateStudent(ns NewStudent) (Student, error) {
	if err := ns.Validate(svc); err != nil {
		return Student{}, err
	}
	if _, err := svc.repo.GetClass(ns.ClassName); err != nil {
		return Student{}, ErrClassNotFound
	}
	stu := Student{
		User: User{
			Name:     ns.Name,
			Phone:    ns.Phone,
			Email:    ns.Email,
			Password: ns.Password,
			Role:     RoleStudent,
		},
		IDNumber:  ns.IDNumber,
		Age:       ns.Age,
		ClassName: ns.ClassName,
		Status:    StatusActive,
	}
	if err := svc.repo.CreateStudent(stu); err != nil {
		return Student{}, err
	}
	svc.LogAction("created new student: name=%s, email=%s, class=%s", stu.Name, stu.Email, stu.ClassName)
	return stu, nil
}

func (svc *Service) StudentByEmail(email string) (Student, error) {
	return svc.repo.GetStudentByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) StudentByIDNumber(id string) (Student, error) {
	return svc.repo.GetStudentByIDNumber(core.CleanString(id))
}

func (svc *Service) QueryAllStudents() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

// StudentsByStatus returns students whose status matches exactly.
func (svc *Service) StudentsByStatus(status string) ([]Student, error) {
	all, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	res := make([]Student, 0, len(all))
	for _, stu := range all {
		if stu.Status == status {
			res = append(res, stu)
		}
	}
	return res, nil
}

func (svc *Service) StudentsInClass(className string) ([]Student, error) {
	all, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	res := make([]Student, 0, len(all))
	for _, stu := range all {
		if stu.ClassName == className {
			res = append(res, stu)
		}
	}
	return res, nil
}

func (svc *Service) UpdateStudent(email string, us UpdateStudent) (Student, error) {
	stu, err := svc.StudentByEmail(email)
	if err != nil {
		return Student{}, err
	}
	if err := us.Validate(stu, svc); err != nil {
		return Student{}, err
	}
	if us.ClassName != stu.ClassName {
		if _, err := svc.repo.GetClass(us.ClassName); err != nil {
			return Student{}, ErrClassNotFound
		}
	}
	stu.Name = us.Name
	stu.Phone = us.Phone
	stu.Age = us.Age
	stu.ClassName = us.ClassName
	stu.Email = us.Email
	if err := svc.repo.UpdateStudent(email, stu); err != nil {
		return Student{}, err
	}
	svc.LogAction("updated student %s: name=%s, email=%s, class=%s", email, stu.Name, stu.Email, stu.ClassName)
	return stu, nil
}

// DeleteStudent removes the student and their grades. Confirmation is the
// caller's responsibility.
func (svc *Service) DeleteStudent(email string) error {
	stu, err := svc.StudentByEmail(email)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteStudent(stu.Email); err != nil {
		return err
	}
	svc.LogAction("deleted student: %s", stu.Email)
	return nil
}

// ToggleStudentStatus flips a student between active and deactive.
func (svc *Service) ToggleStudentStatus(email string) (Student, error) {
	stu, err := svc.StudentByEmail(email)
	if err != nil {
		return Student{}, err
	}
	if stu.IsActive() {
		stu.Deactivate()
	} else {
		stu.Activate()
	}
	if err := svc.repo.UpdateStudent(stu.Email, stu); err != nil {
		return Student{}, err
	}
	svc.LogAction("changed status of %s to %s", stu.Email, stu.Status)
	return stu, nil
}

// AssignGrade records a grade for the student in subject. When the strict
// grading policy is on, subject must be taught in the student's class.
func (svc *Service) AssignGrade(email, subject string, grade float64) error {
	stu, err := svc.StudentByEmail(email)
	if err != nil {
		return err
	}
	subject = core.CleanString(subject)
	if core.Conf.StrictGradeSubjects {
		cls, err := svc.repo.GetClass(stu.ClassName)
		if err != nil {
			return ErrClassNotFound
		}
		// grades key on the class's spelling of the subject, whatever the
		// caller's casing
		var canonical string
		for _, s := range cls.Subjects {
			if strings.EqualFold(s, subject) {
				canonical = s
				break
			}
		}
		if canonical == "" {
			return ErrSubjectNotInClass
		}
		subject = canonical
	}
	if err := stu.AddOrUpdateGrade(subject, grade); err != nil {
		return err
	}
	if err := svc.repo.UpdateStudent(stu.Email, stu); err != nil {
		return err
	}
	svc.LogAction("set grade for %s: %s = %g", stu.Email, subject, grade)
	return nil
}

func (svc *Service) RemoveGrade(email, subject string) error {
	stu, err := svc.StudentByEmail(email)
	if err != nil {
		return err
	}
	stu.RemoveGrade(subject)
	if err := svc.repo.UpdateStudent(stu.Email, stu); err != nil {
		return err
	}
	svc.LogAction("removed grade for %s in %s", stu.Email, subject)
	return nil
}

// ---------- Teachers ----------

func (svc *Service) CreateTeacher(nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(svc); err != nil {
		return Teacher{}, err
	}
	tch := Teacher{
		User: User{
			Name:     nt.Name,
			Phone:    nt.Phone,
			Email:    nt.Email,
			Password: nt.Password,
			Role:     RoleTeacher,
		},
		Subject:    nt.Subject,
		ClassNames: nt.ClassNames,
	}
	if err := svc.repo.CreateTeacher(tch); err != nil {
		return Teacher{}, err
	}
	svc.LogAction("created new teacher: name=%s, email=%s, subject=%s", tch.Name, tch.Email, tch.Subject)
	return tch, nil
}

func (svc *Service) TeacherByEmail(email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAllTeachers() ([]Teacher, error) {
	return svc.repo.QueryAllTeachers()
}

func (svc *Service) UpdateTeacher(email string, ut UpdateTeacher) (Teacher, error) {
	tch, err := svc.TeacherByEmail(email)
	if err != nil {
		return Teacher{}, err
	}
	if err := ut.Validate(tch); err != nil {
		return Teacher{}, err
	}
	tch.Name = ut.Name
	tch.Phone = ut.Phone
	if ut.Password != "" {
		tch.Password = ut.Password
	}
	if err := svc.repo.UpdateTeacher(email, tch); err != nil {
		return Teacher{}, err
	}
	svc.LogAction("updated teacher %s", tch.Email)
	return tch, nil
}

func (svc *Service) DeleteTeacher(email string) error {
	tch, err := svc.TeacherByEmail(email)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteTeacher(tch.Email); err != nil {
		return err
	}
	svc.LogAction("deleted teacher: %s", tch.Email)
	return nil
}

func (svc *Service) AssignTeacherClass(email, className string) (Teacher, error) {
	tch, err := svc.TeacherByEmail(email)
	if err != nil {
		return Teacher{}, err
	}
	if _, err := svc.repo.GetClass(className); err != nil {
		return Teacher{}, ErrClassNotFound
	}
	if err := tch.AssignClass(className); err != nil {
		return Teacher{}, err
	}
	if err := svc.repo.UpdateTeacher(tch.Email, tch); err != nil {
		return Teacher{}, err
	}
	svc.LogAction("assigned class %s to teacher %s", className, tch.Email)
	return tch, nil
}

func (svc *Service) UnassignTeacherClass(email, className string) (Teacher, error) {
	tch, err := svc.TeacherByEmail(email)
	if err != nil {
		return Teacher{}, err
	}
	if err := tch.UnassignClass(className); err != nil {
		return Teacher{}, err
	}
	if err := svc.repo.UpdateTeacher(tch.Email, tch); err != nil {
		return Teacher{}, err
	}
	svc.LogAction("unassigned class %s from teacher %s", className, tch.Email)
	return tch, nil
}

// ---------- Classes ----------

func (svc *Service) CreateClass(nc NewClass) (SchoolClass, error) {
	if err := nc.Validate(svc); err != nil {
		return SchoolClass{}, err
	}
	cls := SchoolClass{Name: nc.Name, Subjects: nc.Subjects, Supervisor: nc.Supervisor}
	if err := svc.repo.CreateClass(cls); err != nil {
		return SchoolClass{}, err
	}
	svc.LogAction("created new class: %s", cls.Name)
	return cls, nil
}

func (svc *Service) ClassByName(name string) (SchoolClass, error) {
	return svc.repo.GetClass(core.CleanString(name))
}

func (svc *Service) QueryAllClasses() ([]SchoolClass, error) {
	return svc.repo.QueryAllClasses()
}

func (svc *Service) SetClassSupervisor(name, supervisor string) (SchoolClass, error) {
	supervisor = core.CleanString(supervisor)
	if strings.Contains(supervisor, ",") {
		return SchoolClass{}, core.NewValidationError(
			ErrSupervisorBadName,
			core.FieldError{Field: "supervisor", Error: ErrSupervisorBadName.Error()},
		)
	}
	cls, err := svc.ClassByName(name)
	if err != nil {
		return SchoolClass{}, err
	}
	cls.Supervisor = supervisor
	if err := svc.repo.UpdateClass(cls); err != nil {
		return SchoolClass{}, err
	}
	svc.LogAction("set supervisor of %s to %s", cls.Name, cls.SupervisorName())
	return cls, nil
}

func (svc *Service) AddClassSubject(name, subject string) (SchoolClass, error) {
	cls, err := svc.ClassByName(name)
	if err != nil {
		return SchoolClass{}, err
	}
	if err := cls.AddSubject(subject); err != nil {
		return SchoolClass{}, err
	}
	if err := svc.repo.UpdateClass(cls); err != nil {
		return SchoolClass{}, err
	}
	svc.LogAction("added subject '%s' to %s", core.CleanString(subject), cls.Name)
	return cls, nil
}

// RemoveClassSubject drops subject from the class. Existing student grades
// for that subject are kept unless the purge policy is enabled.
func (svc *Service) RemoveClassSubject(name, subject string) (SchoolClass, error) {
	cls, err := svc.ClassByName(name)
	if err != nil {
		return SchoolClass{}, err
	}
	if err := cls.RemoveSubject(subject); err != nil {
		return SchoolClass{}, err
	}
	if err := svc.repo.UpdateClass(cls); err != nil {
		return SchoolClass{}, err
	}
	if core.Conf.PurgeGradesOnSubjectRemoval {
		students, err := svc.StudentsInClass(cls.Name)
		if err != nil {
			return SchoolClass{}, err
		}
		for _, stu := range students {
			if _, ok := stu.Grade(subject); !ok {
				continue
			}
			stu.RemoveGrade(subject)
			if err := svc.repo.UpdateStudent(stu.Email, stu); err != nil {
				return SchoolClass{}, err
			}
		}
	}
	svc.LogAction("removed subject '%s' from %s", subject, cls.Name)
	return cls, nil
}

// DeleteClass removes a class. Deletion is rejected while any student or
// teacher still references the class.
func (svc *Service) DeleteClass(name string) error {
	cls, err := svc.ClassByName(name)
	if err != nil {
		return err
	}
	students, err := svc.StudentsInClass(cls.Name)
	if err != nil {
		return err
	}
	if len(students) > 0 {
		return ErrClassInUse
	}
	teachers, err := svc.repo.QueryAllTeachers()
	if err != nil {
		return err
	}
	for _, tch := range teachers {
		if tch.HasClass(cls.Name) {
			return ErrClassInUse
		}
	}
	if err := svc.repo.DeleteClass(cls.Name); err != nil {
		return err
	}
	svc.LogAction("deleted class: %s", cls.Name)
	return nil
}

// ClassStats summarizes student counts per class.
type ClassStats struct {
	ClassName string
	Total     int
	Active    int
	Inactive  int
}

func (svc *Service) QueryClassStats() ([]ClassStats, error) {
	classes, err := svc.repo.QueryAllClasses()
	if err != nil {
		return nil, err
	}
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*ClassStats, len(classes))
	stats := make([]ClassStats, len(classes))
	for i, cls := range classes {
		stats[i] = ClassStats{ClassName: cls.Name}
		byName[cls.Name] = &stats[i]
	}
	for _, stu := range students {
		st, ok := byName[stu.ClassName]
		if !ok {
			continue
		}
		st.Total++
		if stu.IsActive() {
			st.Active++
		} else {
			st.Inactive++
		}
	}
	return stats, nil
}
