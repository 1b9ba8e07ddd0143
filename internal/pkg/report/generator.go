// Package report 模拟报表的异步生成：任务入队后由 worker 延迟处理，
// 按失败率把报表标记为 completed 或 failed。
package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"admin_backend/internal/model"
	"admin_backend/internal/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrQueueClosed = errors.New("report queue closed")
	ErrQueueFull   = errors.New("report queue full")
)

const (
	defaultQueueSize = 64
	minFileSize      = 100_000
	fileSizeSpan     = 1_000_000
)

type Options struct {
	Delay       time.Duration
	FailureRate float64
	Workers     int
	QueueSize   int
	// Rand 为空时使用随机种子
	Rand *rand.Rand
}

// Generator 报表生成 worker 池
type Generator struct {
	db          *gorm.DB
	delay       time.Duration
	failureRate float64
	workers     int
	jobs        chan uint

	mu     sync.Mutex // 保护 rng 与 closed
	rng    *rand.Rand
	closed bool

	wg sync.WaitGroup
}

func NewGenerator(db *gorm.DB, opts Options) *Generator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{
		db:          db,
		delay:       opts.Delay,
		failureRate: opts.FailureRate,
		workers:     opts.Workers,
		jobs:        make(chan uint, opts.QueueSize),
		rng:         opts.Rand,
	}
}

// Start 启动 worker，ctx 取消后停止接收新任务，已出队但未完成的任务保持 generating。
// 启动时会把库中遗留的 generating 报表重新入队。
func (g *Generator) Start(ctx context.Context) {
	for i := 0; i < g.workers; i++ {
		g.wg.Add(1)
		go g.worker(ctx)
	}

	go func() {
		<-ctx.Done()
		g.mu.Lock()
		g.closed = true
		g.mu.Unlock()
	}()

	g.resumePending()
}

// Wait 等待全部 worker 退出
func (g *Generator) Wait() {
	g.wg.Wait()
}

// Enqueue 非阻塞入队，队列已关闭或已满时返回错误
func (g *Generator) Enqueue(id uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrQueueClosed
	}
	select {
	case g.jobs <- id:
		return nil
	default:
		return ErrQueueFull
	}
}

func (g *Generator) resumePending() {
	var ids []uint
	if err := g.db.Model(&model.Report{}).
		Where("status = ?", model.ReportGenerating).
		Order("id ASC").Pluck("id", &ids).Error; err != nil {
		log.Printf("[WARN] 读取待生成报表失败: %v", err)
		return
	}
	for _, id := range ids {
		if err := g.Enqueue(id); err != nil {
			MarkFailed(g.db, id)
		}
	}
	if len(ids) > 0 {
		log.Printf("恢复 %d 个待生成报表", len(ids))
	}
}

func (g *Generator) worker(ctx context.Context) {
	defer g.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-g.jobs:
			if !g.sleep(ctx) {
				return
			}
			if err := g.process(id); err != nil {
				log.Printf("[ERROR] 报表 %d 生成失败: %v", id, err)
			}
		}
	}
}

// sleep 模拟生成耗时，ctx 取消时返回 false
func (g *Generator) sleep(ctx context.Context) bool {
	if g.delay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(g.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// roll 返回是否失败以及模拟的文件大小
func (g *Generator) roll() (bool, int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	failed := g.rng.Float64() < g.failureRate
	return failed, minFileSize + g.rng.Int64N(fileSizeSpan)
}

func (g *Generator) process(id uint) error {
	var r model.Report
	if err := g.db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 生成期间被删除
			return nil
		}
		return err
	}
	if r.Status != model.ReportGenerating {
		return nil
	}

	failed, size := g.roll()
	if failed {
		return g.finish(id, map[string]any{"status": model.ReportFailed})
	}
	return g.finish(id, CompletedFields(r, size))
}

// finish 只更新仍处于 generating 的报表，避免覆盖期间的其它变更
func (g *Generator) finish(id uint, updates map[string]any) error {
	return g.db.Model(&model.Report{}).
		Where("id = ? AND status = ?", id, model.ReportGenerating).
		Updates(updates).Error
}

// CompletedFields 报表完成时写入的文件信息
func CompletedFields(r model.Report, size int64) map[string]any {
	path := fmt.Sprintf("/reports/%s.%s",
		utils.GenerateID(r.Type+"_", strconv.FormatUint(uint64(r.ID), 10), r.CreatedAt.String()), r.Format)
	return map[string]any{
		"status":       model.ReportCompleted,
		"file_size":    size,
		"file_path":    path,
		"file_name":    FileName(r),
		"download_url": path,
	}
}

// FileName 下载文件名：报表名中除字母、数字、汉字外的字符替换为 "_"
func FileName(r model.Report) string {
	return utils.SafeFileName(r.Name) + "." + r.Format
}

// MarkFailed 入队失败时直接把报表标记为失败
func MarkFailed(db *gorm.DB, id uint) {
	err := db.Model(&model.Report{}).
		Where("id = ? AND status = ?", id, model.ReportGenerating).
		Update("status", model.ReportFailed).Error
	if err != nil {
		log.Printf("[ERROR] 标记报表 %d 失败状态出错: %v", id, err)
	}
}
