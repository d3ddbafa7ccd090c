package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	maxSources    = 10
	snippetLength = 100
)

var numberPrinter = message.NewPrinter(language.English)

// GenerateMarkdown 由任意結果結構產生報告；缺少的欄位以預設值填入，
// 非物件的輸入只產生標題
func (s *ResultStorage) GenerateMarkdown(results any) (string, error) {
	root, err := normalize(results)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Rapport d'Analyse - %s\n\n", s.now().Format("02/01/2006 15:04"))

	tree, ok := root.(map[string]any)
	if !ok {
		return b.String(), nil
	}

	if meta, ok := tree["metadata"]; ok {
		m := asMap(meta)
		b.WriteString("## Informations Générales\n\n")
		fmt.Fprintf(&b, "- **Influenceur/URL**: %s\n", str(m, "source", "N/A"))
		fmt.Fprintf(&b, "- **Nombre de vidéos analysées**: %s\n", str(m, "video_count", "0"))
		fmt.Fprintf(&b, "- **Date d'analyse**: %s\n\n", str(m, "analysis_date", "N/A"))
	}

	if videos, ok := tree["videos"]; ok {
		b.WriteString("## Résultats par Vidéo\n\n")
		for i, raw := range asSlice(videos) {
			writeVideo(&b, i+1, asMap(raw))
		}
	}

	if stats, ok := tree["statistics"]; ok {
		m := asMap(stats)
		b.WriteString("## Statistiques Globales\n\n")
		fmt.Fprintf(&b, "- Score moyen de crédibilité: %.1f%%\n", number(m, "average_credibility"))
		fmt.Fprintf(&b, "- Nombre de vidéos vérifiées: %s\n", str(m, "verified_count", "0"))
		fmt.Fprintf(&b, "- Nombre de vidéos non vérifiées: %s\n\n", str(m, "unverified_count", "0"))
	}

	return b.String(), nil
}

func writeVideo(b *strings.Builder, index int, video map[string]any) {
	fmt.Fprintf(b, "### Vidéo %d: %s\n\n", index, str(video, "title", "Sans titre"))

	if meta, ok := video["metadata"]; ok {
		m := asMap(meta)
		b.WriteString("**Métadonnées:**\n")
		fmt.Fprintf(b, "- Auteur: %s\n", str(m, "uploader", "N/A"))
		fmt.Fprintf(b, "- Date: %s\n", str(m, "upload_date", "N/A"))
		fmt.Fprintf(b, "- Vues: %s\n", grouped(m, "view_count"))
		fmt.Fprintf(b, "- Likes: %s\n\n", grouped(m, "like_count"))
	}

	if tr, ok := video["transcription"]; ok {
		fmt.Fprintf(b, "**Transcription:**\n\n%s\n\n", str(asMap(tr), "text", "N/A"))
	}

	if an, ok := video["llm_analysis"]; ok {
		fmt.Fprintf(b, "**Analyse LLM:**\n\n%s\n\n", str(asMap(an), "analysis", "N/A"))
	}

	if fc, ok := video["fact_checking"]; ok {
		m := asMap(fc)
		b.WriteString("**Vérification des Faits:**\n\n")
		fmt.Fprintf(b, "- Score de crédibilité: %s%%\n", str(m, "credibility_score", "0"))
		fmt.Fprintf(b, "- Verdict: %s\n\n", str(m, "verdict", "non_verifie"))

		if sources, ok := m["sources"]; ok {
			b.WriteString("**Sources trouvées:**\n\n")
			list := asSlice(sources)
			if len(list) > maxSources {
				list = list[:maxSources]
			}
			for _, raw := range list {
				src := asMap(raw)
				fmt.Fprintf(b, "- [%s](%s)\n", str(src, "title", "Sans titre"), str(src, "url", "#"))
				fmt.Fprintf(b, "  - %s...\n\n", firstRunes(str(src, "snippet", ""), snippetLength))
			}
		}
	}

	b.WriteString("---\n\n")
}

// normalize 把任意結構（包含混入具名型別的 map）轉成 JSON 樹，數字保留為 json.Number
func normalize(results any) (any, error) {
	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("無法序列化結果: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("無法解析結果: %w", err)
	}
	return tree, nil
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

// str 取出欄位的文字表示；欄位不存在或為 null 時回傳預設值
func str(m map[string]any, key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func number(m map[string]any, key string) float64 {
	switch t := m[key].(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}

// grouped 以千分位格式化數字欄位
func grouped(m map[string]any, key string) string {
	switch t := m[key].(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return numberPrinter.Sprintf("%d", n)
		}
		if f, err := t.Float64(); err == nil {
			return numberPrinter.Sprintf("%v", f)
		}
	case float64:
		if t == float64(int64(t)) {
			return numberPrinter.Sprintf("%d", int64(t))
		}
		return numberPrinter.Sprintf("%v", t)
	case int:
		return numberPrinter.Sprintf("%d", t)
	case int64:
		return numberPrinter.Sprintf("%d", t)
	}
	return "0"
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
