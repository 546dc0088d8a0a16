package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidCNIC(t *testing.T) {
	valid := []string{"3520212345671", "35202-1234567-1"}
	invalid := []string{"352021234567", "35202123456789", "35202-abcdefg-1", ""}
	for _, cnic := range valid {
		if !IsValidCNIC(cnic) {
			t.Errorf("IsValidCNIC(%q) = false, want true", cnic)
		}
	}
	for _, cnic := range invalid {
		if IsValidCNIC(cnic) {
			t.Errorf("IsValidCNIC(%q) = true, want false", cnic)
		}
	}
}

func TestIsValidEmployeeCode(t *testing.T) {
	valid := []string{"6387", "06387", "212045"}
	invalid := []string{"123", "1234567", "63a7", ""}
	for _, code := range valid {
		if !IsValidEmployeeCode(code) {
			t.Errorf("IsValidEmployeeCode(%q) = false, want true", code)
		}
	}
	for _, code := range invalid {
		if IsValidEmployeeCode(code) {
			t.Errorf("IsValidEmployeeCode(%q) = true, want false", code)
		}
	}
}

func TestIsValidPeriod(t *testing.T) {
	cases := []struct {
		month, year int
		want        bool
	}{
		{1, 2025, true},
		{12, 2020, true},
		{0, 2025, false},
		{13, 2025, false},
		{6, 2019, false},
	}
	for _, c := range cases {
		if got := IsValidPeriod(c.month, c.year); got != c.want {
			t.Errorf("IsValidPeriod(%d, %d) = %v, want %v", c.month, c.year, got, c.want)
		}
	}
}
