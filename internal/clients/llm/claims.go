package llm

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	claimsHeading   = regexp.MustCompile(`(?i)affirmations\s+cl[ée]s`)
	sectionNumber   = regexp.MustCompile(`^\s*(?:#+\s*)?(\d+)[.)]`)
	numberedSection = regexp.MustCompile(`^(\d+)[.)]\s*\*\*`)
	listMarker      = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
	sentenceSplit   = regexp.MustCompile(`[.!?]+\s+`)
)

const minClaimRunes = 20

// ExtractClaims 從 LLM 分析的「Affirmations clés」段落取出條列的主張；
// 找不到段落時改用轉錄文字中長度超過 20 字的句子
func ExtractClaims(analysis, transcription string, max int) []string {
	if max <= 0 {
		return nil
	}
	claims := claimsFromAnalysis(analysis, max)
	if len(claims) > 0 {
		return claims
	}
	return claimsFromTranscript(transcription, max)
}

func claimsFromAnalysis(analysis string, max int) []string {
	lines := strings.Split(analysis, "\n")
	start := -1
	var loc []int
	for i, line := range lines {
		if loc = claimsHeading.FindStringIndex(line); loc != nil {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	heading := 0
	if m := sectionNumber.FindStringSubmatch(lines[start]); m != nil {
		heading, _ = strconv.Atoi(m[1])
	}

	var claims []string
	seen := make(map[string]struct{})
	add := func(claim string) bool {
		if claim == "" {
			return false
		}
		if _, dup := seen[claim]; dup {
			return false
		}
		seen[claim] = struct{}{}
		claims = append(claims, claim)
		return len(claims) >= max
	}

	// 標題同一行冒號後的文字也算一條主張
	if add(inlineClaim(lines[start][loc[1]:])) {
		return claims
	}
	for _, line := range lines[start+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") || nextSection(line, heading) {
			break
		}
		if !listMarker.MatchString(trimmed) {
			continue
		}
		if add(cleanClaim(listMarker.ReplaceAllString(trimmed, ""))) {
			break
		}
	}
	return claims
}

// nextSection 判斷是否為下一個編號段落：未縮排、粗體且編號大於主張段落；
// 主張段落本身沒有編號時，編號粗體行一律視為條列
func nextSection(line string, heading int) bool {
	if heading == 0 {
		return false
	}
	m := numberedSection.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	return err == nil && n > heading
}

func inlineClaim(rest string) string {
	rest = strings.ReplaceAll(rest, "**", "")
	rest = strings.TrimLeft(strings.TrimSpace(rest), ":：-– ")
	return cleanClaim(rest)
}

func claimsFromTranscript(transcription string, max int) []string {
	var claims []string
	for _, sentence := range sentenceSplit.Split(strings.TrimSpace(transcription), -1) {
		sentence = strings.TrimSpace(strings.TrimRight(sentence, ".!?"))
		if utf8.RuneCountInString(sentence) <= minClaimRunes {
			continue
		}
		claims = append(claims, sentence)
		if len(claims) >= max {
			break
		}
	}
	return claims
}

func cleanClaim(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.Trim(s, " \t\"«»“”")
	return strings.TrimSpace(s)
}
