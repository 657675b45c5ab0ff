package storage

import (
	"errors"

	"github.com/lib/pq"
)

// коды ошибок PostgreSQL, которые разбираем явно
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
