package testutil

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// Sample OCR output used across packages. The values are fictitious.
const (
	// Two-line passport MRZ (TD3) for ERIKA MUSTERMANN, born 1964-08-12.
	PassportMRZ = "P<D<<MUSTERMANN<<ERIKA<<<<<<<<<<<<<<<<<<<<<<\n" +
		"C01X00T478D<<6408125F2702283<<<<<<<<<<<<<<<4"

	// Emirates-style ID card text.
	EmiratesIDText = "UNITED ARAB EMIRATES\n" +
		"Resident Identity Card\n" +
		"784-1985-1234567-1\n" +
		"Name: Ahmed Al Mansouri\n" +
		"Date of Birth: 12/05/1985"

	// US driver licence text.
	DriverLicenseText = "DRIVER LICENSE\n" +
		"DL D1234567\n" +
		"SMITH, JOHN\n" +
		"DOB 03/07/1990"
)

// HashPassword returns a bcrypt hash at minimum cost, for admin login fixtures.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}
