package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JsonNullString 包裝 sql.NullString，讓 NULL 在 JSON 中輸出為 null
type JsonNullString struct {
	sql.NullString
}

// NewJsonNullString 空字串視為 NULL
func NewJsonNullString(s string) JsonNullString {
	return JsonNullString{NullString: sql.NullString{String: s, Valid: s != ""}}
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

// StringList 以 JSON 陣列存入資料庫欄位，NULL 對應 nil
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("StringList: 序列化失敗: %w", err)
	}
	return b, nil
}

func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("StringList: 不支援的欄位型別 %T", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("StringList: 欄位內容不是 JSON 字串陣列 '%s': %w", string(data), err)
	}
	*l = out
	return nil
}
