package normalize

var (
	accidentFreePhrases = []string{
		"không tai nạn", "ko tai nạn", "k tai nạn", "không đâm đụng", "ko đâm",
		"không đâm", "chưa đâm", "cam kết không tai nạn", "không ngập nước",
		"accident free", "no accident",
	}
	accidentPhrases = []string{"tai nạn", "đâm đụng", "accident"}

	singleOwnerPhrases = []string{
		"1 chủ", "một chủ", "chủ duy nhất", "chủ từ đầu", "chủ từ mới", "single owner",
	}
)

// DetectAccidentFree reports an explicit accident-free claim (true), an
// accident mention (false), or nil when the text says nothing. Negated
// phrases are checked first since they contain the bare accident words.
func DetectAccidentFree(text string) *bool {
	s := lower(text)
	if s == "" {
		return nil
	}
	if containsAny(s, accidentFreePhrases...) {
		v := true
		return &v
	}
	if containsAny(s, accidentPhrases...) {
		v := false
		return &v
	}
	return nil
}

func DetectSingleOwner(text string) bool {
	return containsAny(lower(text), singleOwnerPhrases...)
}
