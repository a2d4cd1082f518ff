package routes

type Tag string

const (
	TagHealth Tag = "health"
	TagTokens Tag = "tokens"
)

func (t Tag) String() string { return string(t) }

func AllTags() []string {
	return []string{
		TagHealth.String(),
		TagTokens.String(),
	}
}
