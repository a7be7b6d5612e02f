package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("Sup3rSecret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hashed == "Sup3rSecret!" {
		t.Fatal("password stored in plaintext")
	}

	if err := CheckPassword(hashed, "Sup3rSecret!"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hashed, "wrong"); err == nil {
		t.Error("wrong password accepted")
	}
}
