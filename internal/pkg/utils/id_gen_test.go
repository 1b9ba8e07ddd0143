package utils

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestIDGen(t *testing.T) {
	id := GenerateID("r_", "sales", "12")
	if !strings.HasPrefix(id, "r_") || len(id) != len("r_")+16 {
		t.Fatalf("unexpected id %q", id)
	}
	if id != GenerateID("r_", "sales", "12") {
		t.Fatal("same keys must give the same id")
	}
	if id == GenerateID("r_", "sales", "13") {
		t.Fatal("different keys collided")
	}
}

func TestPasswordHash(t *testing.T) {
	SetHashCost(bcrypt.MinCost)
	hash, err := HashPassword("admin123")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword("admin123", hash) {
		t.Fatal("password should match")
	}
	if CheckPassword("admin124", hash) {
		t.Fatal("wrong password matched")
	}
	if CheckPassword(hash, "admin123") {
		t.Fatal("arguments are (plain, hash)")
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Node.js":        "node-js",
		"Vue3":           "vue3",
		"  Café Déjà  ":  "cafe-deja",
		"微服务":            "微服务",
		"Go -- Routines": "go-routines",
		"...":            "",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q want %q", in, got, want)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	if got := SafeFileName("销售报表 - 2024-01月"); got != "销售报表___2024_01月" {
		t.Fatalf("got %q", got)
	}
	// 基本区之外的汉字不保留
	tests := map[string]string{
		"一龥":  "一龥",
		"㐀报表": "_报表",
		"〇号":  "_号",
		"𠀀a1": "_a1",
	}
	for in, want := range tests {
		if got := SafeFileName(in); got != want {
			t.Errorf("%q: got %q, want %q", in, got, want)
		}
	}
}
