package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"

	_ "github.com/go-sql-driver/mysql"
)

// ErrNotFound 表示查無資料
var ErrNotFound = errors.New("查無資料")

// MySQLStore 保存每次執行與每支影片的查核結果
type MySQLStore struct {
	db  *sql.DB
	log logger.Logger
}

// DSN 組出 go-sql-driver/mysql 使用的連線字串
func DSN(dbCfg config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.DBName)
}

// NewMySQLStore 開啟連線並確認資料庫可用
func NewMySQLStore(dbCfg config.DatabaseConfig, log logger.Logger) (*MySQLStore, error) {
	if dbCfg.Driver != "mysql" {
		return nil, fmt.Errorf("不支援的資料庫驅動程式: %s", dbCfg.Driver)
	}
	db, err := sql.Open("mysql", DSN(dbCfg))
	if err != nil {
		return nil, fmt.Errorf("開啟資料庫連線失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("無法連線到資料庫 (ping 失敗): %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := NewWithDB(db, log)
	store.log.Info("[MySQL] 成功連線到 MySQL 資料庫", logger.String("host", dbCfg.Host), logger.String("db", dbCfg.DBName))
	return store, nil
}

// NewWithDB 以既有的 *sql.DB 建立 store
func NewWithDB(db *sql.DB, log logger.Logger) *MySQLStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &MySQLStore{db: db, log: log.With(logger.String("component", "mysql"))}
}

// Close 關閉連線
func (s *MySQLStore) Close() error {
	if s.db != nil {
		s.log.Info("[MySQL] 正在關閉資料庫連線...")
		return s.db.Close()
	}
	return nil
}

// SaveRun 新增或更新一次執行的彙總
func (s *MySQLStore) SaveRun(ctx context.Context, run *models.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("無效的執行紀錄或 ID 為空")
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO analysis_runs (
			id, source, video_count, average_credibility, verified_count, unverified_count,
			json_path, markdown_path, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			video_count = VALUES(video_count), average_credibility = VALUES(average_credibility),
			verified_count = VALUES(verified_count), unverified_count = VALUES(unverified_count),
			json_path = VALUES(json_path), markdown_path = VALUES(markdown_path);`

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Source, run.VideoCount, run.AverageCredibility, run.VerifiedCount, run.UnverifiedCount,
		run.JSONPath, run.MarkdownPath, createdAt,
	)
	if err != nil {
		return fmt.Errorf("儲存執行紀錄失敗 (RunID: %s): %w", run.ID, err)
	}
	s.log.Info("[MySQL] 執行紀錄已儲存", logger.String("run_id", run.ID), logger.Int("videos", run.VideoCount))
	return nil
}

// SaveVideoRecord 依 (run_id, video_url) 新增或更新影片結果
func (s *MySQLStore) SaveVideoRecord(ctx context.Context, rec *models.VideoRecord) error {
	if rec == nil || rec.RunID == "" || rec.VideoURL == "" {
		return fmt.Errorf("無效的影片紀錄：RunID 與 VideoURL 不得為空")
	}
	now := time.Now()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	query := `
		INSERT INTO video_results (
			run_id, video_url, title, uploader, upload_date, view_count, like_count,
			status, provider, credibility_score, verdict, transcript, analysis, error_message,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			title = VALUES(title), uploader = VALUES(uploader), upload_date = VALUES(upload_date),
			view_count = VALUES(view_count), like_count = VALUES(like_count), status = VALUES(status),
			provider = VALUES(provider), credibility_score = VALUES(credibility_score),
			verdict = VALUES(verdict), transcript = VALUES(transcript), analysis = VALUES(analysis),
			error_message = VALUES(error_message), updated_at = VALUES(updated_at);`

	toSQLNullString := func(jns *models.JsonNullString) sql.NullString {
		if jns != nil {
			return jns.NullString
		}
		return sql.NullString{Valid: false}
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.RunID, rec.VideoURL, rec.Title, rec.Uploader, rec.UploadDate, rec.ViewCount, rec.LikeCount,
		string(rec.Status), rec.Provider, rec.CredibilityScore, rec.Verdict,
		toSQLNullString(rec.Transcript), toSQLNullString(rec.Analysis), toSQLNullString(rec.ErrorMessage),
		createdAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("儲存影片結果失敗 (RunID: %s, URL: %s): %w", rec.RunID, rec.VideoURL, err)
	}
	s.log.Debug("[MySQL] 影片結果已儲存", logger.String("run_id", rec.RunID), logger.String("status", string(rec.Status)))
	return nil
}

const videoColumns = `id, run_id, video_url, title, uploader, upload_date, view_count, like_count,
	status, provider, credibility_score, verdict, transcript, analysis, error_message,
	created_at, updated_at`

func scanVideoRecord(row interface{ Scan(...any) error }) (models.VideoRecord, error) {
	var (
		rec                              models.VideoRecord
		status                           string
		transcript, analysis, errMessage sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.RunID, &rec.VideoURL, &rec.Title, &rec.Uploader, &rec.UploadDate,
		&rec.ViewCount, &rec.LikeCount, &status, &rec.Provider, &rec.CredibilityScore, &rec.Verdict,
		&transcript, &analysis, &errMessage, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return rec, err
	}
	rec.Status = models.AnalysisStatus(status)
	rec.Transcript = &models.JsonNullString{NullString: transcript}
	rec.Analysis = &models.JsonNullString{NullString: analysis}
	rec.ErrorMessage = &models.JsonNullString{NullString: errMessage}
	return rec, nil
}

// ListRecentVideos 依建立時間由新到舊列出影片結果
func (s *MySQLStore) ListRecentVideos(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := "SELECT " + videoColumns + " FROM video_results ORDER BY created_at DESC, id DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("查詢影片結果失敗: %w", err)
	}
	defer rows.Close()

	var records []models.VideoRecord
	for rows.Next() {
		rec, err := scanVideoRecord(rows)
		if err != nil {
			s.log.Warn("[MySQL] 掃描影片結果失敗，略過", logger.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("處理影片結果集時發生錯誤: %w", err)
	}
	return records, nil
}

// ListVideosByRun 列出單次執行的所有影片結果
func (s *MySQLStore) ListVideosByRun(ctx context.Context, runID string) ([]models.VideoRecord, error) {
	query := "SELECT " + videoColumns + " FROM video_results WHERE run_id = ? ORDER BY id ASC"
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("查詢執行 %s 的影片結果失敗: %w", runID, err)
	}
	defer rows.Close()

	var records []models.VideoRecord
	for rows.Next() {
		rec, err := scanVideoRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("掃描影片結果失敗: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRun 依 ID 取得執行紀錄；不存在時回傳 ErrNotFound
func (s *MySQLStore) GetRun(ctx context.Context, id string) (*models.RunRecord, error) {
	query := `SELECT id, source, video_count, average_credibility, verified_count, unverified_count,
		json_path, markdown_path, created_at FROM analysis_runs WHERE id = ?`
	var run models.RunRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Source, &run.VideoCount, &run.AverageCredibility, &run.VerifiedCount,
		&run.UnverifiedCount, &run.JSONPath, &run.MarkdownPath, &run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("查詢執行紀錄 %s 失敗: %w", id, err)
	}
	return &run, nil
}
