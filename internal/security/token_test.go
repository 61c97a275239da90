package security

import "testing"

func TestNewTokenIsRandom(t *testing.T) {
	first, err := NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	second, err := NewToken()
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	if first == second {
		t.Fatalf("expected two different tokens")
	}
	if len(first) < 40 {
		t.Fatalf("expected a long token, got %q", first)
	}
}

func TestTokensEqual(t *testing.T) {
	if !TokensEqual("abc", "abc") {
		t.Fatalf("expected equal tokens to match")
	}
	if TokensEqual("abc", "abd") {
		t.Fatalf("expected different tokens not to match")
	}
	if TokensEqual("", "") {
		t.Fatalf("expected empty tokens never to match")
	}
}

func TestCheckNewPassword(t *testing.T) {
	if err := CheckNewPassword("short", "short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := CheckNewPassword("long-enough", "different"); err == nil {
		t.Fatalf("expected error for mismatched confirmation")
	}
	if err := CheckNewPassword("long-enough", "long-enough"); err != nil {
		t.Fatalf("expected password to pass, got %v", err)
	}
}

func TestCheckPassword(t *testing.T) {
	cases := map[string]bool{
		"":            false,
		"        ":    false,
		"x":           false,
		"corta12":     false,
		"ocho1234":    true,
		"contraseña1": true,
	}
	for password, ok := range cases {
		if err := CheckPassword(password); (err == nil) != ok {
			t.Fatalf("CheckPassword(%q) = %v, want ok=%v", password, err, ok)
		}
	}
}
