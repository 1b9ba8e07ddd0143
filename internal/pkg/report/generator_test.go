package report

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"admin_backend/internal/database"
	"admin_backend/internal/model"

	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}
	return db
}

func newReport(t *testing.T, db *gorm.DB, name string) model.Report {
	t.Helper()
	r := model.Report{Name: name, Type: "sales", Format: "pdf", Status: model.ReportGenerating}
	if err := db.Create(&r).Error; err != nil {
		t.Fatal(err)
	}
	return r
}

// waitStatus 轮询直到报表离开 generating
func waitStatus(t *testing.T, db *gorm.DB, id uint) model.Report {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var r model.Report
		if err := db.First(&r, id).Error; err != nil {
			t.Fatal(err)
		}
		if r.Status != model.ReportGenerating {
			return r
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("report %d still generating", id)
	return model.Report{}
}

func TestGeneratorCompletes(t *testing.T) {
	db := openDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := NewGenerator(db, Options{Delay: time.Millisecond, FailureRate: 0, Workers: 2, Rand: rand.New(rand.NewPCG(1, 2))})
	g.Start(ctx)

	r := newReport(t, db, "销售报表 - 2024/01")
	if err := g.Enqueue(r.ID); err != nil {
		t.Fatal(err)
	}
	got := waitStatus(t, db, r.ID)
	if got.Status != model.ReportCompleted {
		t.Fatalf("status = %s", got.Status)
	}
	if got.FileSize < minFileSize || got.FileSize >= minFileSize+fileSizeSpan {
		t.Errorf("file size %d out of range", got.FileSize)
	}
	if got.FileName != "销售报表___2024_01.pdf" {
		t.Errorf("file name %q", got.FileName)
	}
	if got.FilePath == "" || got.DownloadURL != got.FilePath {
		t.Errorf("path %q url %q", got.FilePath, got.DownloadURL)
	}

	cancel()
	g.Wait()
}

func TestGeneratorFails(t *testing.T) {
	db := openDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := NewGenerator(db, Options{FailureRate: 1})
	g.Start(ctx)

	r := newReport(t, db, "用户报表")
	if err := g.Enqueue(r.ID); err != nil {
		t.Fatal(err)
	}
	got := waitStatus(t, db, r.ID)
	if got.Status != model.ReportFailed || got.FilePath != "" {
		t.Fatalf("got %+v", got)
	}
}

func TestStartResumesPending(t *testing.T) {
	db := openDB(t)
	r := newReport(t, db, "遗留报表")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := NewGenerator(db, Options{FailureRate: 0})
	g.Start(ctx)

	if got := waitStatus(t, db, r.ID); got.Status != model.ReportCompleted {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	db := openDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGenerator(db, Options{})
	g.Start(ctx)
	cancel()
	g.Wait()

	// closed 标记由独立 goroutine 设置，稍等片刻
	deadline := time.Now().Add(time.Second)
	var err error
	for time.Now().Before(deadline) {
		if err = g.Enqueue(1); errors.Is(err, ErrQueueClosed) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("err = %v", err)
}

func TestEnqueueFullQueue(t *testing.T) {
	db := openDB(t)
	// 不启动 worker，队列只进不出
	g := NewGenerator(db, Options{QueueSize: 1})
	if err := g.Enqueue(1); err != nil {
		t.Fatal(err)
	}
	if err := g.Enqueue(2); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v", err)
	}
}

func TestMarkFailedOnlyTouchesGenerating(t *testing.T) {
	db := openDB(t)
	pending := newReport(t, db, "a")
	done := model.Report{Name: "b", Type: "user", Format: "excel", Status: model.ReportCompleted}
	if err := db.Create(&done).Error; err != nil {
		t.Fatal(err)
	}

	MarkFailed(db, pending.ID)
	MarkFailed(db, done.ID)

	var a, b model.Report
	db.First(&a, pending.ID)
	if a.Status != model.ReportFailed {
		t.Errorf("pending -> %s", a.Status)
	}
	db.First(&b, done.ID)
	if b.Status != model.ReportCompleted {
		t.Errorf("completed -> %s", b.Status)
	}
}
