package domain

type SummaryKind string

const (
	SummaryKindPage       SummaryKind = "page"
	SummaryKindDiscussion SummaryKind = "discussion"
)

func (k SummaryKind) Valid() bool {
	switch k {
	case SummaryKindPage, SummaryKindDiscussion:
		return true
	default:
		return false
	}
}

type SummaryRequest struct {
	Kind    SummaryKind
	Title   string
	Text    string
	Context string
}
