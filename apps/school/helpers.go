package main

import (
	"strconv"
	"strings"

	"github.com/miraalabed/schoolsys/core"
	"github.com/miraalabed/schoolsys/core/school"
)

// askNonEmpty re-prompts until a non-empty answer arrives.
func (s *session) askNonEmpty(prompt string) string {
	for !s.cons.EOF() {
		if v := core.CleanString(s.cons.Ask(prompt, "")); v != "" {
			return v
		}
		s.cons.Error("This field must not be empty.")
	}
	return ""
}

// askDigits re-prompts until the answer is exactly n digits.
func (s *session) askDigits(prompt string, n int) string {
	for !s.cons.EOF() {
		v := core.CleanString(s.cons.Ask(prompt, ""))
		if len(v) == n && isDigits(v) {
			return v
		}
		s.cons.Error("Input must be exactly %d digits.", n)
	}
	return ""
}

// askIntIn re-prompts until the answer is an integer within [lo,hi].
func (s *session) askIntIn(prompt string, lo, hi int) int {
	for !s.cons.EOF() {
		v, err := strconv.Atoi(core.CleanString(s.cons.Ask(prompt, "")))
		if err == nil && v >= lo && v <= hi {
			return v
		}
		s.cons.Error("Input must be a number between %d and %d.", lo, hi)
	}
	return 0
}

// askEmail re-prompts until the answer is a well-formed, available address.
// Addresses in excluded stay usable (the caller's own, on edits).
func (s *session) askEmail(prompt, def string, excluded ...string) string {
	for !s.cons.EOF() {
		v := core.CleanString(s.cons.Ask(prompt, def), true /* lower */)
		if err := core.Validate.Var(v, "required,email"); err != nil {
			s.cons.Error("Invalid email format.")
			continue
		}
		if err := s.svc.CheckEmailAvailable(v, excluded...); err != nil {
			s.cons.Error("%s.", capitalize(err.Error()))
			continue
		}
		return v
	}
	return ""
}

// askPassword re-prompts until the secret answer is 4-8 characters long.
func (s *session) askPassword(prompt string) string {
	for !s.cons.EOF() {
		v := s.cons.AskSecret(prompt)
		if strings.TrimSpace(v) == "" {
			s.cons.Error("Password field must not be empty.")
			continue
		}
		if len(v) < 4 || len(v) > 8 {
			s.cons.Error("Password must be between 4 and 8 characters.")
			continue
		}
		return v
	}
	return ""
}

// askValidGrade re-prompts until the answer is a number within [0,100].
func (s *session) askValidGrade(prompt string) float64 {
	for !s.cons.EOF() {
		v, err := strconv.ParseFloat(core.CleanString(s.cons.Ask(prompt, "")), 64)
		if err != nil {
			s.cons.Error("Grade must be a number.")
			continue
		}
		if v < 0 || v > 100 {
			s.cons.Error("Grade must be between 0 and 100.")
			continue
		}
		return v
	}
	return 0
}

// reportError renders a service error, expanding per-field validation
// messages.
func (s *session) reportError(err error) {
	if verr, ok := err.(*core.ValidationError); ok && len(verr.Fields) > 0 {
		for _, fld := range verr.Fields {
			s.cons.Error("%s: %s", fld.Field, fld.Error)
		}
		return
	}
	s.cons.Error("%s.", capitalize(err.Error()))
}

func classNames(classes []school.SchoolClass) []string {
	names := make([]string, 0, len(classes))
	for _, cls := range classes {
		names = append(names, cls.Name)
	}
	return names
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
