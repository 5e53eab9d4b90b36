package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/olenaliuby/social-media-api/apperr"
)

// translate maps gorm sentinel errors onto API error kinds. It relies on
// gorm.Config.TranslateError so unique violations arrive as ErrDuplicatedKey.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.KindNotFound, entity+" not found.", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.KindConflict, entity+" already exists.", err)
	}
	return err
}

// containsPattern builds a LIKE pattern for a case-insensitive substring match.
// Use with "LOWER(col) LIKE ? ESCAPE '\'".
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

const likeClause = ` LIKE ? ESCAPE '\'`
