package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
)

// taskIDSeparator разделяет ключ контракта и локальный номер задачи
// во внешнем идентификаторе: "<contractKey>/<localID>".
const taskIDSeparator = "/"

// FormatTaskID собирает внешний идентификатор задачи. Для нативного
// деплоймента ключ опускается: внешним ID остаётся голый номер.
func FormatTaskID(contractKey string, localID uint64, native bool) string {
	if native {
		return strconv.FormatUint(localID, 10)
	}
	return contractKey + taskIDSeparator + strconv.FormatUint(localID, 10)
}

// SplitTaskID разбирает внешний идентификатор. Пустой contractKey
// означает нативный деплоймент. Ошибки разбора поднимаются до любого
// сетевого вызова.
func SplitTaskID(id string) (contractKey string, localID uint64, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", 0, apperror.ErrMalformedTaskID
	}

	raw := id
	if i := strings.Index(id, taskIDSeparator); i >= 0 {
		contractKey = id[:i]
		raw = id[i+1:]
		if contractKey == "" || strings.Contains(raw, taskIDSeparator) {
			return "", 0, apperror.Wrap(apperror.ErrMalformedTaskID, apperror.ErrCodeRouting, fmt.Sprintf("некорректный составной идентификатор %q", id))
		}
	}

	localID, err = strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return "", 0, apperror.Wrap(err, apperror.ErrCodeRouting, fmt.Sprintf("некорректный номер задачи %q", raw))
	}
	return contractKey, localID, nil
}
