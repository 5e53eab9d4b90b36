package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "This field may not be blank."
	}
}

func MaxLength(field, value string, max int, v Violations) {
	if utf8.RuneCountInString(value) > max {
		v[field] = "Ensure this field has no more than " + strconv.Itoa(max) + " characters."
	}
}

func Email(field, value string, v Violations) {
	at := strings.LastIndex(value, "@")
	if at < 1 || at == len(value)-1 || !strings.Contains(value[at:], ".") {
		v[field] = "Enter a valid email address."
	}
}

func MinLength(field, value string, min int, v Violations) {
	if utf8.RuneCountInString(value) < min {
		v[field] = "Ensure this field has at least " + strconv.Itoa(min) + " characters."
	}
}
