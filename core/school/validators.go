package school

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/miraalabed/schoolsys/core"
)

var (
	// password policy: a password may not closely resemble the owner's
	// name or email
	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

func init() {
	core.Validate.RegisterStructValidation(newStudentStructValidation, NewStudent{})
	core.Validate.RegisterStructValidation(teacherStructValidation, NewTeacher{}, UpdateTeacher{})
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
}

func newStudentStructValidation(sl validator.StructLevel) {
	ns := sl.Current().Interface().(NewStudent)
	validatePasswordSimilarity(ns.Password, []string{ns.Name, ns.Email}, sl)
}

func teacherStructValidation(sl validator.StructLevel) {
	switch t := sl.Current().Interface().(type) {
	case NewTeacher:
		validatePasswordSimilarity(t.Password, []string{t.Name, t.Email}, sl)
	case UpdateTeacher:
		if t.Password != "" {
			validatePasswordSimilarity(t.Password, []string{t.Name}, sl)
		}
	}
}

// validatePasswordSimilarity rejects passwords whose similarity ratio to any
// of the user attributes reaches pwdMaxSim.
func validatePasswordSimilarity(pwd string, attrs []string, sl validator.StructLevel) {
	if pwd == "" {
		return
	}
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(
			strings.Split(strings.ToLower(pwd), ""),
			strings.Split(strings.ToLower(attr), ""),
		).QuickRatio()
		if ratio >= pwdMaxSim {
			sl.ReportError(pwd, "password", "Password", pwdAttrSimTag, "")
			return
		}
	}
}
