package services

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"TikTokFactCheck/internal/clients/search"
	"TikTokFactCheck/internal/logger"
	"TikTokFactCheck/internal/metrics"
	"TikTokFactCheck/internal/models"
)

// 事實查核網站 (依序查詢)
var factCheckingSites = []string{
	"snopes.com",
	"factcheck.org",
	"politifact.com",
	"lemonde.fr/verification",
	"lesdecodeurs.lemonde.fr",
	"factuel.afp.com",
}

// 可信新聞來源
var trustedNewsSources = []string{
	"reuters.com",
	"apnews.com",
	"lemonde.fr",
	"franceinfo.fr",
	"france24.com",
}

const (
	perSiteResults    = 3
	factCheckCap      = 10
	scientificResults = 5
	newsCap           = 15
	webResults        = 10

	scholarSite   = "scholar.google.com"
	scholarSource = "Google Scholar"
	webSource     = "Web"

	baseCredibility = 50
)

var (
	falseKeywords   = []string{"false", "faux", "misleading", "trompeur"}
	trueKeywords    = []string{"true", "vrai", "correct"}
	partialKeywords = []string{"partially", "partiellement", "mixture"}
)

// FactChecker 以四類搜尋查核主張
type FactChecker struct {
	searcher search.Searcher
	metrics  *metrics.Metrics
	log      logger.Logger
}

// NewFactChecker 建立 FactChecker；metrics 可為 nil
func NewFactChecker(searcher search.Searcher, m *metrics.Metrics, log logger.Logger) (*FactChecker, error) {
	if searcher == nil {
		return nil, fmt.Errorf("FactChecker：Searcher 不得為空")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FactChecker{
		searcher: searcher,
		metrics:  m,
		log:      log.With(logger.String("component", "factchecker")),
	}, nil
}

// VerifyClaims 依序查核每個主張；重複的主張只保留一筆
func (f *FactChecker) VerifyClaims(ctx context.Context, claims []string, language string) map[string]models.ClaimVerification {
	results := make(map[string]models.ClaimVerification, len(claims))
	for _, claim := range claims {
		if _, done := results[claim]; done {
			continue
		}
		f.log.Info("[FactChecker] 查核主張", logger.String("claim", truncateRunes(claim, 50)))
		results[claim] = f.verifySingleClaim(ctx, claim, language)
	}
	return results
}

func (f *FactChecker) verifySingleClaim(ctx context.Context, claim string, language string) models.ClaimVerification {
	factChecking := f.searchFactChecking(ctx, claim)
	scientific := f.searchScientific(ctx, claim)
	news := f.searchNews(ctx, claim)
	web := f.searchWeb(ctx, claim)

	return models.ClaimVerification{
		Claim:               claim,
		Sources:             web,
		FactCheckingResults: factChecking,
		ScientificResults:   scientific,
		NewsResults:         news,
		CredibilityScore:    CredibilityScore(len(factChecking), len(scientific), len(news)),
		Verdict:             DetermineVerdict(factChecking, len(scientific), len(news), len(web)),
	}
}

func (f *FactChecker) searchFactChecking(ctx context.Context, claim string) []models.SearchHit {
	hits := make([]models.SearchHit, 0)
	for _, site := range factCheckingSites {
		hits = append(hits, f.search(ctx, "fact_checking", claim+" site:"+site, perSiteResults, site)...)
	}
	return capHits(hits, factCheckCap)
}

func (f *FactChecker) searchScientific(ctx context.Context, claim string) []models.SearchHit {
	return f.search(ctx, "scientific", claim+" site:"+scholarSite, scientificResults, scholarSource)
}

func (f *FactChecker) searchNews(ctx context.Context, claim string) []models.SearchHit {
	hits := make([]models.SearchHit, 0)
	for _, site := range trustedNewsSources {
		hits = append(hits, f.search(ctx, "news", claim+" site:"+site, perSiteResults, site)...)
	}
	return capHits(hits, newsCap)
}

func (f *FactChecker) searchWeb(ctx context.Context, claim string) []models.SearchHit {
	return f.search(ctx, "web", claim, webResults, webSource)
}

// search 執行單次搜尋；錯誤只記錄並回傳空結果
func (f *FactChecker) search(ctx context.Context, category, query string, max int, source string) []models.SearchHit {
	results, err := f.searcher.Text(ctx, query, max)
	if err != nil {
		f.log.Warn("[FactChecker] 搜尋失敗，略過",
			logger.String("category", category),
			logger.String("source", source),
			logger.Error(err))
		f.metrics.ObserveSearchError(category)
		return []models.SearchHit{}
	}

	hits := make([]models.SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, models.SearchHit{
			Title:   r.Title,
			URL:     r.Href,
			Snippet: r.Body,
			Source:  source,
		})
		if len(hits) >= max {
			break
		}
	}
	return hits
}

// CredibilityScore 以各類命中數計算 0 到 100 的可信度分數
func CredibilityScore(factChecking, scientific, news int) int {
	score := baseCredibility
	if factChecking > 0 {
		score += min(factChecking*5, 20)
	}
	if scientific > 0 {
		score += min(scientific*3, 15)
	}
	if news > 0 {
		score += min(news*2, 15)
	}
	return min(score, 100)
}

// DetermineVerdict 依事實查核片段的關鍵字與來源數量決定結論
func DetermineVerdict(factChecking []models.SearchHit, scientific, news, web int) models.Verdict {
	if len(factChecking) > 0 {
		snippets := make([]string, 0, len(factChecking))
		for _, hit := range factChecking {
			snippets = append(snippets, strings.ToLower(hit.Snippet))
		}
		joined := strings.Join(snippets, " ")
		switch {
		case containsAny(joined, falseKeywords):
			return models.VerdictFaux
		case containsAny(joined, trueKeywords):
			return models.VerdictVrai
		case containsAny(joined, partialKeywords):
			return models.VerdictPartiellementVrai
		}
	}

	if scientific >= 3 && news >= 3 {
		return models.VerdictProbablementVrai
	}
	if web < 3 {
		return models.VerdictNonVerifie
	}
	return models.VerdictNonVerifie
}

// Summarize 將多個主張的結果彙總成影片層級：分數取平均、結論取最嚴重者、來源取聯集
func Summarize(claims map[string]models.ClaimVerification) models.FactCheckSummary {
	summary := models.FactCheckSummary{
		CredibilityScore: baseCredibility,
		Verdict:          models.VerdictNonVerifie,
		Sources:          []models.SearchHit{},
		Claims:           claims,
	}
	if summary.Claims == nil {
		summary.Claims = map[string]models.ClaimVerification{}
	}
	if len(claims) == 0 {
		return summary
	}

	total := 0
	seenURL := make(map[string]struct{})
	worst := models.VerdictNonVerifie
	for _, claim := range slices.Sorted(maps.Keys(claims)) {
		v := claims[claim]
		total += v.CredibilityScore
		if v.Verdict.Severity() < worst.Severity() {
			worst = v.Verdict
		}
		for _, hit := range v.Sources {
			if _, dup := seenURL[hit.URL]; dup {
				continue
			}
			seenURL[hit.URL] = struct{}{}
			summary.Sources = append(summary.Sources, hit)
		}
	}
	summary.CredibilityScore = int(math.Round(float64(total) / float64(len(claims))))
	summary.Verdict = worst
	return summary
}

func capHits(hits []models.SearchHit, n int) []models.SearchHit {
	if len(hits) > n {
		return hits[:n]
	}
	return hits
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return s
}
