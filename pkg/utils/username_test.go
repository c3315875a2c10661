package utils

import "testing"

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "user_name", "User123", "9lives", "a_b_c_d_e_f_g_h_i_j_"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{"ab", "", "_leading", "has space", "has-dash", "über", "123456789012345678901"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("  MixedCase  "); got != "mixedcase" {
		t.Fatalf("NormalizeUsername = %q, want mixedcase", got)
	}
}
