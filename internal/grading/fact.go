package grading

import (
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/yungbote/quizlab-backend/internal/normalization"
)

var (
	codeLikeRe     = regexp.MustCompile(`0x|\$|\bcc\b|\bctl\b|\bbpm\b|\bhz\b|\bkhz\b|\bdb\b|\bms\b|\bs\b|\d`)
	builtinLexicon = sync.OnceValue(DefaultLexicon)
)

// IsStrictFact reports whether the expected answer is a single exact value
// (year, number, code) that must be matched rather than paraphrased.
func IsStrictFact(question, expected string) bool {
	return builtinLexicon().IsStrictFact(question, expected)
}

func (lx *Lexicon) IsStrictFact(question, expected string) bool {
	if len(normalization.ExtractYearTokens(expected)) > 0 {
		return true
	}
	if len(normalization.ExtractNumberTokens(expected)) == 0 {
		return false
	}
	if lx.questionHinted(normalization.Normalize(question)) {
		return true
	}
	if len(normalization.Tokens(normalization.Normalize(expected))) <= 3 {
		return true
	}
	return codeLikeRe.MatchString(strings.ToLower(expected))
}

// StrictFactCorrect compares a user answer to a strict-fact expected answer.
// A single expected year needs exactly that one year; otherwise the number
// tokens must match as sorted lists.
func StrictFactCorrect(user, expected string) bool {
	if normalization.Normalize(user) == normalization.Normalize(expected) ||
		normalization.HexDecimalEqual(user, expected) {
		return true
	}
	expYears := normalization.ExtractYearTokens(expected)
	if len(expYears) == 1 {
		usrYears := normalization.ExtractYearTokens(user)
		return len(usrYears) == 1 && usrYears[0] == expYears[0]
	}
	expNums := normalization.ExtractNumberTokens(strings.ToLower(expected))
	if len(expNums) == 0 {
		return false
	}
	usrNums := normalization.ExtractNumberTokens(strings.ToLower(user))
	if len(usrNums) != len(expNums) {
		return false
	}
	slices.Sort(expNums)
	slices.Sort(usrNums)
	return slices.Equal(expNums, usrNums)
}
