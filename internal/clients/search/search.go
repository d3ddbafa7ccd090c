// Package search 提供事實查核使用的文字搜尋引擎。
package search

import "context"

// Result 為單筆搜尋結果
type Result struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Body  string `json:"body"`
}

// Searcher 執行一次文字搜尋並回傳最多 maxResults 筆結果
type Searcher interface {
	Text(ctx context.Context, query string, maxResults int) ([]Result, error)
}
