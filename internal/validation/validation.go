// Package validation holds per-entity field validators: country-dependent
// document and salary rules, email-domain checks, and password complexity.
// Validators return an error message string; empty means the value passed.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// CountryRule describes the country-specific constraints applied to manager
// fields. A country with no rule gets no extra constraint.
type CountryRule struct {
	CIPattern *regexp.Regexp
	MinSalary decimal.Decimal
	MaxSalary decimal.Decimal
}

var countryRules = map[string]CountryRule{
	"EC": {
		CIPattern: regexp.MustCompile(`^\d{10}$`),
		MinSalary: decimal.NewFromInt(460),
		MaxSalary: decimal.NewFromInt(50000),
	},
	"CO": {
		CIPattern: regexp.MustCompile(`^\d{6,10}$`),
		MinSalary: decimal.NewFromInt(1300000),
		MaxSalary: decimal.NewFromInt(200000000),
	},
	"PE": {
		CIPattern: regexp.MustCompile(`^\d{8}$`),
		MinSalary: decimal.NewFromInt(1025),
		MaxSalary: decimal.NewFromInt(100000),
	},
}

// RuleFor returns the country rule for an ISO code, if one is configured.
func RuleFor(country string) (CountryRule, bool) {
	rule, ok := countryRules[strings.ToUpper(country)]
	return rule, ok
}

// CI validates an identity/tax document number for the given country.
func CI(country, ci string) string {
	if strings.TrimSpace(ci) == "" {
		return "ci is required"
	}
	rule, ok := RuleFor(country)
	if !ok || rule.CIPattern == nil {
		return ""
	}
	if !rule.CIPattern.MatchString(ci) {
		return fmt.Sprintf("ci format is invalid for country %s", strings.ToUpper(country))
	}
	return ""
}

// Salary validates a salary against the country bounds.
func Salary(country string, salary decimal.Decimal) string {
	if salary.IsNegative() {
		return "salary cannot be negative"
	}
	rule, ok := RuleFor(country)
	if !ok {
		return ""
	}
	if salary.LessThan(rule.MinSalary) {
		return fmt.Sprintf("salary is below the minimum of %s for country %s", rule.MinSalary, strings.ToUpper(country))
	}
	if salary.GreaterThan(rule.MaxSalary) {
		return fmt.Sprintf("salary exceeds the maximum of %s for country %s", rule.MaxSalary, strings.ToUpper(country))
	}
	return ""
}

// ManagerEmailDomain checks that a manager email belongs to the company
// domain derived from its slug: "@{slug}.com".
func ManagerEmailDomain(email, companySlug string) string {
	want := "@" + companySlug + ".com"
	if !strings.HasSuffix(strings.ToLower(email), strings.ToLower(want)) {
		return fmt.Sprintf("email must end with %s", want)
	}
	return ""
}

// PasswordComplexity enforces the minimum bar for new passwords: at least 8
// characters and one uppercase letter. Applied on create, and on edit only
// when a new password is supplied.
func PasswordComplexity(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	hasUpper := false
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return "password must contain at least one uppercase letter"
	}
	return ""
}
