package utils

import "testing"

func TestHashPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "" || hashed == "admin123" {
		t.Fatalf("unexpected hash %q", hashed)
	}

	if err := ComparePassword(hashed, "admin123"); err != nil {
		t.Errorf("ComparePassword with correct password: %v", err)
	}
	if err := ComparePassword(hashed, "wrong"); err == nil {
		t.Error("ComparePassword accepted a wrong password")
	}
}
