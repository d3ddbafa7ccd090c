package visualizer

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxWords     = 100
	minWordRunes = 4
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopwordsFR = map[string]struct{}{
	"le": {}, "la": {}, "les": {}, "de": {}, "du": {}, "des": {}, "et": {}, "ou": {},
	"un": {}, "une": {}, "ce": {}, "cette": {}, "ces": {}, "il": {}, "elle": {},
	"ils": {}, "elles": {}, "je": {}, "tu": {}, "nous": {}, "vous": {}, "on": {},
	"ça": {}, "c'est": {}, "est": {}, "sont": {}, "être": {}, "avoir": {},
	"faire": {}, "dire": {}, "voir": {}, "aller": {}, "venir": {}, "pour": {},
	"dans": {}, "sur": {}, "avec": {}, "sans": {}, "par": {}, "mais": {}, "donc": {},
}

// WordFreq 為單一詞彙的出現次數
type WordFreq struct {
	Word  string
	Count int
}

// TopWords 回傳去除停用詞且長度大於 3 的前 n 個高頻詞；同次數依字母排序
func TopWords(transcriptions []string, n int) []WordFreq {
	text := strings.ToLower(strings.Join(transcriptions, " "))
	counts := make(map[string]int)
	for _, w := range wordPattern.FindAllString(text, -1) {
		if _, stop := stopwordsFR[w]; stop {
			continue
		}
		if utf8.RuneCountInString(w) < minWordRunes {
			continue
		}
		counts[w]++
	}

	freqs := make([]WordFreq, 0, len(counts))
	for w, c := range counts {
		freqs = append(freqs, WordFreq{Word: w, Count: c})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Word < freqs[j].Word
	})
	if len(freqs) > n {
		freqs = freqs[:n]
	}
	return freqs
}
