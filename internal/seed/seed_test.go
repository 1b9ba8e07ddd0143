package seed

import (
	"testing"

	"admin_backend/internal/database"
	"admin_backend/internal/model"
	"admin_backend/internal/pkg/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SetHashCost(bcrypt.MinCost)
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestRunLoadsDemoData(t *testing.T) {
	db := openDB(t)
	if err := Run(db); err != nil {
		t.Fatalf("run: %v", err)
	}
	// 第二次执行应跳过
	if err := Run(db); err != nil {
		t.Fatalf("second run: %v", err)
	}

	tests := []struct {
		model any
		want  int64
	}{
		{&model.Role{}, 4},
		{&model.User{}, int64(len(DemoAccounts))},
		{&model.Menu{}, 6},
		{&model.Settings{}, 1},
		{&model.Category{}, 5},
		{&model.Tag{}, 15},
		{&model.Article{}, ArticleCount},
		{&model.Report{}, ReportCount},
		{&model.Activity{}, 30},
	}
	for _, tt := range tests {
		var got int64
		if err := db.Model(tt.model).Count(&got).Error; err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("%T: got %d, want %d", tt.model, got, tt.want)
		}
	}
}

func TestDemoAccounts(t *testing.T) {
	db := openDB(t)
	if err := Run(db); err != nil {
		t.Fatal(err)
	}

	for _, a := range DemoAccounts {
		var u model.User
		if err := db.Preload("Roles").Where("username = ?", a.Username).First(&u).Error; err != nil {
			t.Fatalf("%s: %v", a.Username, err)
		}
		if !utils.CheckPassword(a.Password, u.Password) {
			t.Errorf("%s: password mismatch", a.Username)
		}
		if u.Status != a.Status {
			t.Errorf("%s: status %d", a.Username, u.Status)
		}
		if len(u.Roles) != 1 || u.Roles[0].Code != a.Role {
			t.Errorf("%s: roles %+v", a.Username, u.Roles)
		}
	}
}

func TestArticleTagsAreDistinct(t *testing.T) {
	db := openDB(t)
	if err := Run(db); err != nil {
		t.Fatal(err)
	}

	var articles []model.Article
	if err := db.Preload("Tags").Find(&articles).Error; err != nil {
		t.Fatal(err)
	}
	for _, a := range articles {
		if n := len(a.Tags); n < 2 || n > 4 {
			t.Errorf("article %d has %d tags", a.ID, n)
		}
		seen := map[uint]bool{}
		for _, tag := range a.Tags {
			if seen[tag.ID] {
				t.Errorf("article %d repeats tag %d", a.ID, tag.ID)
			}
			seen[tag.ID] = true
		}
		if (a.Status == model.ArticlePublished) != (a.PublishedAt != nil) {
			t.Errorf("article %d: status %d publishedAt %v", a.ID, a.Status, a.PublishedAt)
		}
	}
}

func TestReportsHaveFilesOnlyWhenCompleted(t *testing.T) {
	db := openDB(t)
	if err := Run(db); err != nil {
		t.Fatal(err)
	}
	var reports []model.Report
	if err := db.Find(&reports).Error; err != nil {
		t.Fatal(err)
	}
	for _, r := range reports {
		hasFile := r.FilePath != "" && r.FileSize > 0
		if hasFile != (r.Status == model.ReportCompleted) {
			t.Errorf("report %d: status %s file %q", r.ID, r.Status, r.FilePath)
		}
	}
}
