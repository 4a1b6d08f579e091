// Package sorting строит составные компараторы и фильтры коллекций задач
// для списочных представлений. Компаратор — упорядоченный список
// критериев: первый различающий критерий решает порядок, остальные —
// запасные, и каждая цепочка заканчивается детерминирующим сравнением
// по идентификатору.
package sorting

import (
	"math/big"
	"time"

	"github.com/glossa-labs/glossa-backend/internal/models"
	"github.com/glossa-labs/glossa-backend/internal/pricing"
	"github.com/glossa-labs/glossa-backend/internal/validation"
)

// Имена представлений списка задач.
const (
	ViewAll        = "all"
	ViewOpen       = "open"
	ViewInProgress = "inProgress"
	ViewInReview   = "inReview"
	ViewInDispute  = "inDispute"
	ViewFinished   = "finished"
	ViewIncomplete = "incomplete"
)

// Context — контекст смотрящего: его аккаунт, заявленные языки и общий
// снимок времени. Один снимок на компаратор: все сравнения одного
// прохода сортировки взаимно согласованы.
type Context struct {
	Account string
	Skills  []string
	Now     time.Time
}

// Comparator сравнивает две задачи: отрицательное значение — a раньше b.
type Comparator func(a, b *models.Task) int

// criterion — один критерий: либо именованное числовое поле с
// фиксированным направлением, либо произвольная функция сравнения.
// Обе формы равноправны.
type criterion struct {
	field   string // "ID" | "disputeID" | "status" | "lastInteraction"
	sign    int    // +1 по возрастанию, -1 по убыванию
	compare func(a, b *models.Task) int
}

// GetComparator возвращает тотальный порядок для именованного
// представления. Неизвестное имя ведёт себя как "all".
func GetComparator(view string, ctx Context) Comparator {
	if ctx.Now.IsZero() {
		ctx.Now = time.Now()
	}
	now := ctx.Now
	skillsMatch := skillsMatcher(ctx.Skills)

	remainingSubmissionDesc := func(a, b *models.Task) int {
		return compareInt64(
			int64(pricing.RemainingTimeForSubmission(b.Status, b.CreatedAt, b.LastInteraction, b.SubmissionTimeout, now)),
			int64(pricing.RemainingTimeForSubmission(a.Status, a.CreatedAt, a.LastInteraction, a.SubmissionTimeout, now)),
		)
	}
	remainingReviewDesc := func(a, b *models.Task) int {
		return compareInt64(
			int64(pricing.RemainingTimeForReview(b.Status, b.LastInteraction, b.ReviewTimeout, now)),
			int64(pricing.RemainingTimeForReview(a.Status, a.LastInteraction, a.ReviewTimeout, now)),
		)
	}
	// Несделанные задачи в конец: независимо от оставшегося времени.
	incompleteLast := func(a, b *models.Task) int {
		return boolToInt(a.Incomplete) - boolToInt(b.Incomplete)
	}
	matchingSkillsFirst := func(a, b *models.Task) int {
		return skillsMatch(b) - skillsMatch(a)
	}
	// Цена за слово по убыванию, на больших целых и общем снимке
	// времени: никакой плавающей точки, порядок не плавает от округления.
	pricePerWordDesc := func(a, b *models.Task) int {
		return currentPricePerWord(b, now).Cmp(currentPricePerWord(a, now))
	}
	viewerTranslatorFirst := func(a, b *models.Task) int {
		aIs := ctx.Account != "" && validation.SameAddress(a.Translator, ctx.Account)
		bIs := ctx.Account != "" && validation.SameAddress(b.Translator, ctx.Account)
		switch {
		case aIs == bIs:
			return 0
		case aIs:
			return -1
		default:
			return 1
		}
	}

	views := map[string][]criterion{
		ViewAll: {
			{compare: incompleteLast},
			{compare: remainingSubmissionDesc},
		},
		ViewOpen: {
			{compare: matchingSkillsFirst},
			{compare: pricePerWordDesc},
		},
		ViewInProgress: {
			{compare: matchingSkillsFirst},
			{compare: remainingSubmissionDesc},
		},
		ViewInReview: {
			{compare: matchingSkillsFirst},
			{compare: viewerTranslatorFirst},
			{compare: remainingReviewDesc},
		},
		ViewInDispute: {
			{compare: matchingSkillsFirst},
			{field: "disputeID", sign: -1},
		},
		ViewFinished: {},
		ViewIncomplete: {
			{compare: viewerTranslatorFirst},
			{field: "status", sign: -1},
			{field: "lastInteraction", sign: -1},
		},
	}

	criteria, ok := views[view]
	if !ok {
		criteria = views[ViewAll]
	}
	// Терминальное сравнение по идентификатору делает порядок тотальным.
	criteria = append(criteria, criterion{field: "ID", sign: -1})

	return func(a, b *models.Task) int {
		for _, c := range criteria {
			var order int
			if c.compare != nil {
				order = c.compare(a, b)
			} else {
				order = c.sign * compareInt64(fieldValue(a, c.field), fieldValue(b, c.field))
			}
			if order != 0 {
				return order
			}
		}
		// Идентификаторы совпали — различаем деплойменты.
		return compareStrings(a.ContractKey, b.ContractKey)
	}
}

// Filter возвращает предикат именованного представления.
func Filter(view string) func(*models.Task) bool {
	switch view {
	case ViewOpen:
		return func(t *models.Task) bool { return t.Status == models.TaskStatusCreated && !t.Incomplete }
	case ViewInProgress:
		return func(t *models.Task) bool { return t.Status == models.TaskStatusAssigned && !t.Incomplete }
	case ViewInReview:
		return func(t *models.Task) bool { return t.Status == models.TaskStatusAwaitingReview }
	case ViewInDispute:
		return func(t *models.Task) bool { return t.Status == models.TaskStatusDisputeCreated }
	case ViewFinished:
		return func(t *models.Task) bool { return t.Status == models.TaskStatusResolved }
	case ViewIncomplete:
		return func(t *models.Task) bool { return t.Incomplete }
	default:
		return func(*models.Task) bool { return true }
	}
}

// skillsMatcher: задача подходит, если оба её языка заявлены смотрящим.
func skillsMatcher(skills []string) func(*models.Task) int {
	if len(skills) == 0 {
		return func(*models.Task) int { return 0 }
	}
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		set[s] = true
	}
	return func(t *models.Task) int {
		if set[t.Metadata.SourceLanguage] && set[t.Metadata.TargetLanguage] {
			return 1
		}
		return 0
	}
}

func currentPricePerWord(t *models.Task, now time.Time) *big.Int {
	price := pricing.CurrentPrice(t.MinPrice, t.MaxPrice, t.CreatedAt, t.SubmissionTimeout, now)
	return pricing.PricePerWord(price, t.Metadata.WordCount)
}

func fieldValue(t *models.Task, field string) int64 {
	switch field {
	case "ID":
		return int64(t.LocalID)
	case "disputeID":
		return int64(t.DisputeID)
	case "status":
		return int64(t.Status)
	case "lastInteraction":
		return t.LastInteraction.Unix()
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
