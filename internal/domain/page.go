package domain

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type PageQuery struct {
	Page  int
	Limit int
}

func NewPageQuery(page, limit int) PageQuery {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageQuery{Page: page, Limit: limit}
}

func (q PageQuery) Offset() int { return (q.Page - 1) * q.Limit }

// Sort names a logical column; repositories map it to SQL.
type Sort struct {
	Column string
	Desc   bool
}

type Page[T any] struct {
	Items []T
	Total int64
	Query PageQuery
}

func (p Page[T]) PageItems() any { return p.Items }

func (p Page[T]) PageMeta() (total int64, page, limit int) {
	return p.Total, p.Query.Page, p.Query.Limit
}
