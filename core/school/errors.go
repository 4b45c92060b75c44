package school

import "errors"

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrClassNotFound   = errors.New("class not found")

	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrIDNumberExists = errors.New("a student with this ID number already exists")
	ErrClassExists    = errors.New("a class with this name already exists")
	ErrEmailReserved  = errors.New("this email is reserved and cannot be used")

	ErrDuplicateSubject  = errors.New("subject is already assigned to this class")
	ErrSubjectNotFound   = errors.New("subject is not assigned to this class")
	ErrEmptySubject      = errors.New("subject must not be empty")
	ErrSubjectBadChars   = errors.New("subject must not contain ',' or '-'")
	ErrSupervisorBadName = errors.New("supervisor name must not contain ','")

	ErrClassAlreadyAssigned = errors.New("teacher is already assigned to this class")
	ErrClassNotAssigned     = errors.New("teacher is not assigned to this class")
	ErrTooManyClasses       = errors.New("a teacher may be assigned at most 4 classes")
	ErrClassInUse           = errors.New("class is still referenced by students or teachers")

	ErrGradeOutOfRange   = errors.New("grade must be between 0 and 100")
	ErrSubjectNotInClass = errors.New("subject is not taught in the student's class")
)
