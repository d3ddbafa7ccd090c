package scheduler

import (
	"context"
	"fmt"
	"time"

	"TikTokFactCheck/internal/logger"

	"github.com/robfig/cron/v3"
)

const stopTimeout = 10 * time.Second

// Scheduler 包裝 cron，負責註冊與停止排程任務
type Scheduler struct {
	cron   *cron.Cron
	cancel context.CancelFunc
	log    logger.Logger
}

// NewScheduler 以 Cron 表達式 (含秒) 註冊 MonitorJob；同一任務仍在執行時跳過下一次觸發
func NewScheduler(ctx context.Context, analyzer UserAnalyzer, cronSpec string, users []string, maxVideos int, log logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if analyzer == nil {
		return nil, fmt.Errorf("排程器需要分析流程")
	}
	if cronSpec == "" {
		return nil, fmt.Errorf("未提供帳號監控任務的 Cron 表達式")
	}
	if len(users) == 0 {
		log.Warn("[Scheduler] 未設定監控帳號，排程任務不會處理任何影片")
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	jobCtx, cancel := context.WithCancel(ctx)
	job := NewMonitorJob(jobCtx, analyzer, users, maxVideos, log)
	if _, err := c.AddJob(cronSpec, job); err != nil {
		cancel()
		return nil, fmt.Errorf("無法新增帳號監控任務到排程器 (spec: %s): %w", cronSpec, err)
	}
	log.Info("[Scheduler] 帳號監控任務已註冊", logger.String("spec", cronSpec))

	return &Scheduler{cron: c, cancel: cancel, log: log}, nil
}

// Start 非阻塞啟動
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("[Scheduler] 排程器已啟動")
}

// Stop 停止排程並等待執行中的任務
func (s *Scheduler) Stop() {
	s.log.Info("[Scheduler] 正在停止排程器...")
	s.cancel()
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.log.Info("[Scheduler] 排程器已優雅停止，所有運行中任務已完成")
	case <-time.After(stopTimeout):
		s.log.Warn("[Scheduler] 排程器停止超時，可能仍有任務在執行")
	}
}

// cronLogger 將 cron 的日誌轉到 logger.Logger
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("[Scheduler] cron: "+msg, logger.Any("kv", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("[Scheduler] cron: "+msg, logger.Error(err), logger.Any("kv", keysAndValues))
}
