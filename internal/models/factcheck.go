package models

// Verdict 為事實查核結論
type Verdict string

const (
	VerdictVrai              Verdict = "vrai"
	VerdictFaux              Verdict = "faux"
	VerdictPartiellementVrai Verdict = "partiellement_vrai"
	VerdictProbablementVrai  Verdict = "probablement_vrai"
	VerdictNonVerifie        Verdict = "non_verifie"
)

// Verdicts 依嚴重程度排列 (最嚴重在前)
var Verdicts = []Verdict{
	VerdictFaux,
	VerdictPartiellementVrai,
	VerdictVrai,
	VerdictProbablementVrai,
	VerdictNonVerifie,
}

// Severity 回傳結論的嚴重程度，數字越小越嚴重；未知結論視同 non_verifie
func (v Verdict) Severity() int {
	for i, known := range Verdicts {
		if v == known {
			return i
		}
	}
	return len(Verdicts) - 1
}

// SearchHit 為單筆搜尋結果
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// ClaimVerification 為單一主張的查核結果，建立後不再修改
type ClaimVerification struct {
	Claim               string      `json:"claim"`
	Sources             []SearchHit `json:"sources"`
	FactCheckingResults []SearchHit `json:"fact_checking_results"`
	ScientificResults   []SearchHit `json:"scientific_results"`
	NewsResults         []SearchHit `json:"news_results"`
	CredibilityScore    int         `json:"credibility_score"`
	Verdict             Verdict     `json:"verdict"`
}

// FactCheckSummary 為單支影片所有主張的彙總
type FactCheckSummary struct {
	CredibilityScore int                          `json:"credibility_score"`
	Verdict          Verdict                      `json:"verdict"`
	Sources          []SearchHit                  `json:"sources"`
	Claims           map[string]ClaimVerification `json:"claims"`
}
