package repo

import (
	"strings"

	"gorm.io/gorm/clause"

	"campus-leave/internal/domain"
)

// orderBy maps a logical sort column through cols. Unknown columns fall back to def.
func orderBy(cols map[string]string, s domain.Sort, def clause.OrderByColumn) clause.OrderByColumn {
	col, ok := cols[s.Column]
	if !ok {
		return def
	}
	return clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: s.Desc}
}

func rawDesc(col string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: col, Raw: true}, Desc: true}
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "1062")
}
