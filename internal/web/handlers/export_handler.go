package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	exportLimit = 1000
	xlsxSheet   = "Analyses"
)

var exportHeaders = []string{
	"Titre",
	"URL",
	"Auteur",
	"Date",
	"Vues",
	"Likes",
	"Statut",
	"Fournisseur",
	"Score de crédibilité",
	"Verdict",
	"Erreur",
}

// ExportHandler 將影片查核結果匯出為 CSV 或 XLSX
type ExportHandler struct {
	source *RecordSource
	now    func() time.Time
	log    logger.Logger
}

// NewExportHandler 建立一個 ExportHandler 實例
func NewExportHandler(source *RecordSource, log logger.Logger) *ExportHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ExportHandler{source: source, now: time.Now, log: log}
}

// ServeHTTP 實現 http.Handler 介面；format 可為 csv (預設) 或 xlsx
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.log.Info("[ExportHandler] 收到請求", logger.String("method", r.Method), logger.String("remote", r.RemoteAddr))

	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		http.Error(w, "不支援的匯出格式", http.StatusBadRequest)
		return
	}

	records, err := h.source.Recent(r.Context(), exportLimit)
	if err != nil {
		h.log.Error("[ExportHandler] 讀取影片紀錄失敗", logger.Error(err))
		http.Error(w, "無法獲取匯出數據", http.StatusInternalServerError)
		return
	}
	h.log.Info("[ExportHandler] 準備匯出", logger.Int("records", len(records)), logger.String("format", format))

	filename := fmt.Sprintf("verification_%s.%s", h.now().Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if format == "xlsx" {
		h.writeXLSX(w, records)
		return
	}
	h.writeCSV(w, records)
}

func exportRow(rec models.VideoRecord) []string {
	row := make([]string, len(exportHeaders))
	row[0] = rec.Title.String
	row[1] = rec.VideoURL
	row[2] = rec.Uploader.String
	row[3] = rec.UploadDate.String
	row[4] = strconv.FormatInt(rec.ViewCount, 10)
	row[5] = strconv.FormatInt(rec.LikeCount, 10)
	row[6] = string(rec.Status)
	row[7] = rec.Provider.String
	if rec.CredibilityScore.Valid {
		row[8] = strconv.FormatInt(rec.CredibilityScore.Int64, 10)
	}
	row[9] = rec.Verdict.String
	row[10] = rec.ErrorMessage.Text()
	return row
}

func (h *ExportHandler) writeCSV(w http.ResponseWriter, records []models.VideoRecord) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		h.log.Error("[ExportHandler] 寫入 CSV 標題失敗", logger.Error(err))
		return
	}
	for _, rec := range records {
		if err := writer.Write(exportRow(rec)); err != nil {
			h.log.Error("[ExportHandler] 寫入 CSV 資料列失敗", logger.Error(err))
			return
		}
	}
}

func (h *ExportHandler) writeXLSX(w http.ResponseWriter, records []models.VideoRecord) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			h.log.Warn("[ExportHandler] 關閉 XLSX 失敗", logger.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		h.log.Error("[ExportHandler] 建立工作表失敗", logger.Error(err))
		http.Error(w, "無法建立 XLSX", http.StatusInternalServerError)
		return
	}
	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			http.Error(w, "無法建立 XLSX", http.StatusInternalServerError)
			return
		}
		if err := f.SetCellValue(xlsxSheet, cell, header); err != nil {
			http.Error(w, "無法建立 XLSX", http.StatusInternalServerError)
			return
		}
	}
	for rowIdx, rec := range records {
		for colIdx, value := range exportRow(rec) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				http.Error(w, "無法建立 XLSX", http.StatusInternalServerError)
				return
			}
			if err := f.SetCellValue(xlsxSheet, cell, value); err != nil {
				http.Error(w, "無法建立 XLSX", http.StatusInternalServerError)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(w); err != nil {
		h.log.Error("[ExportHandler] 輸出 XLSX 失敗", logger.Error(err))
	}
}
