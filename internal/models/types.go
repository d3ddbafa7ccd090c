package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// JsonNullString 包裝 sql.NullString，NULL 欄位輸出為 JSON null
type JsonNullString struct {
	sql.NullString
}

// NewJsonNullString 以空字串代表 NULL
func NewJsonNullString(s string) *JsonNullString {
	return &JsonNullString{NullString: sql.NullString{String: s, Valid: s != ""}}
}

// Text 回傳字串內容，NULL 時回傳空字串
func (jns *JsonNullString) Text() string {
	if jns == nil || !jns.Valid {
		return ""
	}
	return jns.String
}

func (jns JsonNullString) MarshalJSON() ([]byte, error) {
	if !jns.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(jns.String)
}

func (jns *JsonNullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		jns.String, jns.Valid = "", false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		jns.String, jns.Valid = "", false
		return fmt.Errorf("JsonNullString: 期望 JSON 字串或 null，但得到 '%s': %w", string(data), err)
	}
	jns.String, jns.Valid = s, true
	return nil
}
