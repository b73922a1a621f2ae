package sqlstore

import (
	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashrecall/internal/models"
)

func statementBuilder(driver string) squirrel.StatementBuilderType {
	if driver == "postgres" {
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	}
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// normalize pins timestamps to UTC regardless of how the driver decoded them.
func normalize(p *models.CardProgress) {
	p.NextReviewDate = p.NextReviewDate.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.LastReviewDate != nil {
		t := p.LastReviewDate.UTC()
		p.LastReviewDate = &t
	}
}
