package validate

import (
	"reflect"
	"regexp"
	"testing"
)

func TestField(t *testing.T) {
	other := "secret1!"
	tests := []struct {
		name  string
		value string
		rules Rules
		want  []string
	}{
		{"required missing", "", Rules{Required: true}, []string{"This field is required"}},
		{"required present", "x", Rules{Required: true}, nil},
		{"bad email", "not-an-email", Rules{Email: true}, []string{"Please enter a valid email address"}},
		{"good email", "a@b.co", Rules{Email: true}, nil},
		{"email skipped when empty", "", Rules{Email: true}, nil},
		{"too short", "ab", Rules{MinLength: 3}, []string{"Must be at least 3 characters"}},
		{"too long", "abcd", Rules{MaxLength: 3}, []string{"Must be no more than 3 characters"}},
		{"pattern mismatch", "abc", Rules{Pattern: regexp.MustCompile(`^\d+$`)}, []string{"Please enter a valid value"}},
		{"pattern skipped when empty", "", Rules{Pattern: regexp.MustCompile(`^\d+$`)}, nil},
		{"match mismatch", "secret2!", Rules{Match: &other}, []string{"Values do not match"}},
		{"match ok", "secret1!", Rules{Match: &other}, nil},
		{
			"multiple failures", "",
			Rules{Required: true, MinLength: 3},
			[]string{"This field is required", "Must be at least 3 characters"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Field(tt.value, tt.rules); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Field(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"strong", "Abcdef1!", nil},
		{"missing special", "Abcdefg1", []string{"Password must contain at least one special character (!@#$%^&*)"}},
		{"missing number", "Abcdefg!", []string{"Password must contain at least one number"}},
		{"missing upper", "abcdefg1!", []string{"Password must contain at least one uppercase letter"}},
		{
			"short all lower", "ab1",
			[]string{
				"Password must be at least 8 characters",
				"Password must contain at least one uppercase letter",
				"Password must contain at least one special character (!@#$%^&*)",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Password(tt.password); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Password(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}
