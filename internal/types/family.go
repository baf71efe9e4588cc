package types

import (
	"errors"
	"fmt"
	"strings"
)

// Family selects which stage-client variants and instructions a job uses.
type Family string

const (
	FamilyAngularJS Family = "angularjs"
	FamilyJaxRS     Family = "jaxrs"
	FamilyJSF       Family = "jsf"
	FamilyStruts    Family = "struts"
)

var ErrUnknownFamily = errors.New("unknown framework family")

// Families lists the supported families in display order.
func Families() []Family {
	return []Family{FamilyAngularJS, FamilyJaxRS, FamilyJSF, FamilyStruts}
}

// ParseFamily accepts the canonical names case-insensitively, so "JaxRs" and
// "JAXRS" both resolve to FamilyJaxRS.
func ParseFamily(s string) (Family, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	for _, f := range Families() {
		if string(f) == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

// Valid reports whether f is one of the canonical family values.
func (f Family) Valid() bool {
	for _, known := range Families() {
		if f == known {
			return true
		}
	}
	return false
}

// DisplayName is the human label used in logs and listings.
func (f Family) DisplayName() string {
	switch f {
	case FamilyAngularJS:
		return "AngularJs"
	case FamilyJaxRS:
		return "JaxRs"
	case FamilyJSF:
		return "Jsf"
	case FamilyStruts:
		return "Struts"
	}
	return string(f)
}
