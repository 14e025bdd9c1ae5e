package processor

import (
	"strings"
	"time"
	"unicode"
)

// MRZ holds the fields of an ICAO 9303 machine readable zone.
// Dates stay in their raw YYMMDD form.
type MRZ struct {
	Format         string // TD1 (ID cards, 3x30) or TD3 (passports, 2x44)
	DocumentCode   string
	IssuingCountry string
	DocumentNumber string
	Nationality    string
	BirthDate      string
	Sex            string
	ExpiryDate     string
	Surname        string
	GivenNames     string
	Warnings       []string
}

// mrzLine strips the spaces OCR tends to insert and reports whether what is
// left looks like MRZ text: long enough, only A-Z 0-9 and filler.
func mrzLine(line string) (string, bool) {
	compact := strings.ReplaceAll(line, " ", "")
	if len(compact) < 28 || !strings.Contains(compact, "<") {
		return compact, false
	}
	for _, c := range compact {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '<' {
			return compact, false
		}
	}
	return compact, true
}

// FindMRZ scans OCR lines for a TD3 pair or a TD1 triple and decodes the first one found.
func FindMRZ(lines []string) *MRZ {
	var candidates []string
	for _, l := range lines {
		if compact, ok := mrzLine(l); ok {
			candidates = append(candidates, compact)
		}
	}

	for i := 0; i+1 < len(candidates); i++ {
		if strings.HasPrefix(candidates[i], "P") && len(candidates[i]) > 36 {
			if m := parseTD3(candidates[i], candidates[i+1]); m != nil {
				return m
			}
		}
	}
	for i := 0; i+2 < len(candidates); i++ {
		if strings.ContainsRune("IAC", rune(candidates[i][0])) && len(candidates[i]) <= 32 {
			if m := parseTD1(candidates[i], candidates[i+1], candidates[i+2]); m != nil {
				return m
			}
		}
	}
	return nil
}

// parseTD3 decodes a passport MRZ.
// Line 1: P<CCCSURNAME<<GIVEN<NAMES
// Line 2: number(0-8) check(9) nationality(10-12) dob(13-18) check(19)
// sex(20) expiry(21-26) check(27)
func parseTD3(first, second string) *MRZ {
	line1 := padLine(first, 44)
	line2 := padLine(second, 44)

	if !isValidMRZDate(line2[13:19]) {
		return nil
	}

	m := &MRZ{
		Format:         "TD3",
		DocumentCode:   cleanMRZ(line1[0:2]),
		IssuingCountry: cleanMRZ(line1[2:5]),
		DocumentNumber: cleanMRZ(line2[0:9]),
		Nationality:    cleanMRZ(line2[10:13]),
		BirthDate:      line2[13:19],
		Sex:            sex(line2[20]),
		ExpiryDate:     line2[21:27],
	}
	m.Surname, m.GivenNames = splitMRZName(line1[5:])

	m.verify("document_number", line2[0:9], line2[9])
	m.verify("date_of_birth", line2[13:19], line2[19])
	m.verify("expiry_date", line2[21:27], line2[27])
	return m
}

// parseTD1 decodes an ID-card MRZ.
// Line 1: doc code(0-1) country(2-4) number(5-13) check(14)
// Line 2: dob(0-5) check(6) sex(7) expiry(8-13) check(14) nationality(15-17)
// Line 3: SURNAME<<GIVEN<NAMES
func parseTD1(first, second, third string) *MRZ {
	line1 := padLine(first, 30)
	line2 := padLine(second, 30)
	line3 := padLine(third, 30)

	if !isValidMRZDate(line2[0:6]) {
		return nil
	}

	m := &MRZ{
		Format:         "TD1",
		DocumentCode:   cleanMRZ(line1[0:2]),
		IssuingCountry: cleanMRZ(line1[2:5]),
		DocumentNumber: cleanMRZ(line1[5:14]),
		BirthDate:      line2[0:6],
		Sex:            sex(line2[7]),
		ExpiryDate:     line2[8:14],
		Nationality:    cleanMRZ(line2[15:18]),
	}
	m.Surname, m.GivenNames = splitMRZName(line3)

	m.verify("document_number", line1[5:14], line1[14])
	m.verify("date_of_birth", line2[0:6], line2[6])
	m.verify("expiry_date", line2[8:14], line2[14])
	return m
}

// BirthDateISO expands the YYMMDD birth date to YYYY-MM-DD assuming the 1900s.
// It returns "" when the month or day is impossible.
func (m *MRZ) BirthDateISO() string {
	return expandMRZDate(m.BirthDate)
}

func (m *MRZ) verify(field, value string, check byte) {
	if check == '<' {
		return
	}
	if want := checkDigit(value); byte('0'+want) != check {
		m.Warnings = append(m.Warnings, "MRZ check digit mismatch for "+field)
	}
}

// checkDigit computes the ICAO 9303 check digit (weights 7, 3, 1).
func checkDigit(s string) int {
	weights := [3]int{7, 3, 1}
	sum := 0
	for i, c := range s {
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		}
		sum += v * weights[i%3]
	}
	return sum % 10
}

func expandMRZDate(yymmdd string) string {
	if !isValidMRZDate(yymmdd) {
		return ""
	}
	d, err := time.Parse("20060102", "19"+yymmdd)
	if err != nil {
		return ""
	}
	return d.Format("2006-01-02")
}

func splitMRZName(s string) (surname, given string) {
	parts := strings.SplitN(s, "<<", 2)
	surname = cleanMRZName(parts[0])
	if len(parts) == 2 {
		given = cleanMRZName(parts[1])
	}
	return surname, given
}

func sex(c byte) string {
	if c == 'M' || c == 'F' {
		return string(c)
	}
	return ""
}

func padLine(line string, length int) string {
	if len(line) >= length {
		return line[:length]
	}
	return line + strings.Repeat("<", length-len(line))
}

func cleanMRZ(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "<", ""))
}

// cleanMRZName turns single fillers into spaces and drops trailing filler.
func cleanMRZName(s string) string {
	cleaned := strings.TrimRight(s, "< ")
	cleaned = strings.ReplaceAll(cleaned, "<", " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

func isValidMRZDate(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}
