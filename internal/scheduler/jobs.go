package scheduler

import (
	"context"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/services"
)

// UserAnalyzer 為排程任務所需的流程
type UserAnalyzer interface {
	AnalyzeUser(ctx context.Context, username string, maxVideos int, trigger string) (*services.RunOutput, error)
}

// MonitorJob 定期重新分析監控中的帳號
type MonitorJob struct {
	ctx       context.Context
	analyzer  UserAnalyzer
	users     []string
	maxVideos int
	log       logger.Logger
}

// NewMonitorJob 建立一個 MonitorJob；ctx 取消後任務不再處理剩餘帳號
func NewMonitorJob(ctx context.Context, analyzer UserAnalyzer, users []string, maxVideos int, log logger.Logger) *MonitorJob {
	if log == nil {
		log = logger.NewNop()
	}
	return &MonitorJob{
		ctx:       ctx,
		analyzer:  analyzer,
		users:     users,
		maxVideos: maxVideos,
		log:       log,
	}
}

// Run 實現 cron.Job 介面 (github.com/robfig/cron/v3)
func (j *MonitorJob) Run() {
	j.log.Info("[Scheduler] 執行排程任務 - 帳號監控", logger.Strings("users", j.users))

	successCount, failCount := 0, 0
	for _, user := range j.users {
		if j.ctx.Err() != nil {
			j.log.Warn("[Scheduler] 排程器已停止，略過剩餘帳號")
			break
		}
		out, err := j.analyzer.AnalyzeUser(j.ctx, user, j.maxVideos, services.TriggerScheduler)
		if err != nil {
			j.log.Error("[Scheduler] 帳號監控失敗", logger.String("username", user), logger.Error(err))
			failCount++
			continue
		}
		successCount++
		j.log.Info("[Scheduler] 帳號監控完成",
			logger.String("username", user),
			logger.String("run_id", out.RunID),
			logger.Int("videos", len(out.Report.Videos)))
	}
	j.log.Info("[Scheduler] 帳號監控排程任務執行完成", logger.Int("success", successCount), logger.Int("failed", failCount))
}
