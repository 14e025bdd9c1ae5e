package processor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rentalneeds/leadflow-backend/internal/docscan/domain"
)

var (
	passportNumberLabel = regexp.MustCompile(`(?i)passport\s+(?:number|no)[.:#]?\s*([A-Z0-9]{5,})`)
	passportNumberBare  = regexp.MustCompile(`\b([A-Z]{1,2}\d[A-Z0-9]{5,8})\b`)
	mrzCharset          = regexp.MustCompile(`^[A-Z0-9<]+$`)

	licenseNumberLabel = regexp.MustCompile(`(?i)licen[cs]e\s+(?:number|no)[.:#]?\s*([0-9][0-9-]*)`)
	emiratesIDNumber   = regexp.MustCompile(`(\d{3}-\d{4}-\d{7}-\d)`)
	shortLabelNumber   = regexp.MustCompile(`\b(?:DL|ID|LIC)\b[#:\s]*([A-Z0-9-]+)`)
	letterPrefixNumber = regexp.MustCompile(`\b([A-Z]{1,3}\d{6,10})\b`)
	bareNumber         = regexp.MustCompile(`\b(\d{6,10})\b`)

	labeledName         = regexp.MustCompile(`(?i)Name[:\s]+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)
	labeledPassportName = regexp.MustCompile(`(?i)\bNames?\b\s*[:.]?\s*([A-Z][A-Z\s]+[A-Z])`)
	surnameFirst        = regexp.MustCompile(`^([A-Z]+),\s*([A-Z]+)`)
	mrzNameLine         = regexp.MustCompile(`P<[A-Z]{3}([A-Z]+)<<([A-Z<]+)`)
	titleCaseWord       = regexp.MustCompile(`^[A-Z][a-z]+$`)
	upperCaseWord       = regexp.MustCompile(`^[A-Z]+$`)

	labeledDate = regexp.MustCompile(`(?i)(?:date of birth|dob|birth)[:\s]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{4})`)
	anyDate     = regexp.MustCompile(`\b(\d{1,2}[/\-]\d{1,2}[/\-]\d{4})\b`)
	sixDigits   = regexp.MustCompile(`\d{6}`)
	digit       = regexp.MustCompile(`\d`)
	letter      = regexp.MustCompile(`[A-Z]`)
)

// Words that mark a line as document boilerplate rather than a holder name.
var boilerplateWords = []string{"UNITED", "ARAB", "EMIRATES", "PASSPORT"}

// ExtractFields reads identity fields out of OCR text. Each field is found
// independently and left empty when no rule matches. It never fails.
func ExtractFields(text string, docType domain.DocumentType) domain.ExtractedFields {
	lines := splitLines(text)

	fields := domain.ExtractedFields{IDType: docType}
	fields.IDNumber = findIDNumber(lines, docType)
	fields.FirstName, fields.LastName = findName(lines, docType)
	fields.DateOfBirth = findDateOfBirth(lines, docType)
	return fields
}

func splitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// firstMatch applies rule to every line in order and returns the first non-empty result.
func firstMatch(lines []string, rule func(line string) string) string {
	for _, l := range lines {
		if v := rule(l); v != "" {
			return v
		}
	}
	return ""
}

func submatch(re *regexp.Regexp, line string) string {
	if m := re.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

func findIDNumber(lines []string, docType domain.DocumentType) string {
	var rules []func(string) string
	if docType.IsPassport() {
		rules = []func(string) string{
			func(l string) string {
				v := submatch(passportNumberLabel, l)
				if !digit.MatchString(v) {
					return ""
				}
				return v
			},
			func(l string) string {
				compact := strings.ReplaceAll(l, " ", "")
				if len(compact) <= 30 || !mrzCharset.MatchString(compact) || strings.HasPrefix(compact, "P<") {
					return ""
				}
				v := strings.ReplaceAll(compact[:9], "<", "")
				if len(v) < 7 || !letter.MatchString(v) || !digit.MatchString(v) {
					return ""
				}
				return v
			},
			func(l string) string { return submatch(passportNumberBare, l) },
		}
	} else {
		rules = []func(string) string{
			func(l string) string {
				return strings.TrimRight(submatch(licenseNumberLabel, l), "-")
			},
			func(l string) string { return submatch(emiratesIDNumber, l) },
			func(l string) string {
				v := submatch(shortLabelNumber, l)
				if len(v) <= 4 || !digit.MatchString(v) {
					return ""
				}
				return v
			},
			func(l string) string { return submatch(letterPrefixNumber, l) },
			func(l string) string {
				if anyDate.MatchString(l) {
					return ""
				}
				return submatch(bareNumber, l)
			},
		}
	}

	for _, rule := range rules {
		if v := firstMatch(lines, rule); v != "" {
			return v
		}
	}
	return ""
}

func findName(lines []string, docType domain.DocumentType) (first, last string) {
	if docType.IsPassport() {
		for _, l := range lines {
			m := labeledPassportName.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			parts := strings.Fields(m[1])
			if len(parts) < 2 {
				continue
			}
			return splitHalves(parts)
		}
	} else {
		for _, l := range lines {
			if m := labeledName.FindStringSubmatch(l); m != nil {
				parts := strings.Fields(m[1])
				return parts[0], strings.Join(parts[1:], " ")
			}
		}
	}

	for _, l := range lines {
		if m := surnameFirst.FindStringSubmatch(l); m != nil {
			return m[2], m[1]
		}
	}

	if docType.IsPassport() {
		if mrz := FindMRZ(lines); mrz != nil && mrz.Surname != "" && mrz.GivenNames != "" {
			return mrz.GivenNames, mrz.Surname
		}
		for _, l := range lines {
			if m := mrzNameLine.FindStringSubmatch(strings.ReplaceAll(l, " ", "")); m != nil {
				return cleanMRZName(m[2]), m[1]
			}
		}
	}

	for _, l := range lines {
		if isBoilerplate(l) {
			continue
		}
		words := nameWords(l)
		if len(words) < 2 || len(words) > 6 || !allCapitalized(words) {
			continue
		}
		return splitHalves(words)
	}
	return "", ""
}

// nameWords drops particles of two letters or fewer, so "Mohammed Al Rashid"
// yields Mohammed and Rashid.
func nameWords(line string) []string {
	var words []string
	for _, w := range strings.Fields(line) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// splitHalves gives the first ceil(n/2) words to the first name.
func splitHalves(words []string) (first, last string) {
	mid := int(math.Ceil(float64(len(words)) / 2))
	return strings.Join(words[:mid], " "), strings.Join(words[mid:], " ")
}

func allCapitalized(words []string) bool {
	for _, w := range words {
		if !titleCaseWord.MatchString(w) && !upperCaseWord.MatchString(w) {
			return false
		}
	}
	return true
}

func isBoilerplate(line string) bool {
	upper := strings.ToUpper(line)
	for _, w := range boilerplateWords {
		if strings.Contains(upper, w) {
			return true
		}
	}
	return false
}

func findDateOfBirth(lines []string, docType domain.DocumentType) string {
	if v := firstMatch(lines, func(l string) string {
		return normalizeDate(submatch(labeledDate, l))
	}); v != "" {
		return v
	}

	if v := firstMatch(lines, func(l string) string {
		for _, m := range anyDate.FindAllStringSubmatch(l, -1) {
			if d := normalizeDate(m[1]); d != "" {
				return d
			}
		}
		return ""
	}); v != "" {
		return v
	}

	if !docType.IsPassport() {
		return ""
	}
	if mrz := FindMRZ(lines); mrz != nil {
		if d := mrz.BirthDateISO(); d != "" {
			return d
		}
	}
	return firstMatch(lines, func(l string) string {
		compact := strings.ReplaceAll(l, " ", "")
		if len(compact) <= 30 || !mrzCharset.MatchString(compact) {
			return ""
		}
		for _, run := range sixDigits.FindAllString(compact, -1) {
			if d := expandMRZDate(run); d != "" {
				return d
			}
		}
		return ""
	})
}

// normalizeDate turns D/M/YYYY (or D-M-YYYY) into YYYY-MM-DD. Dates that are
// impossible day-first are retried month-first; "" when neither validates.
func normalizeDate(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return ""
	}
	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errA != nil || errB != nil || errY != nil {
		return ""
	}
	if d, ok := civilDate(year, b, a); ok {
		return d
	}
	if d, ok := civilDate(year, a, b); ok {
		return d
	}
	return ""
}

func civilDate(year, month, day int) (string, bool) {
	s := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}
