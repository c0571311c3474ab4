package risk

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"CrediTech/internal/domain/models"
	"CrediTech/internal/domain/service"
	"CrediTech/pkg/util"
)

const (
	defaultHistorySize = 10000
	scoreWindow        = 50
	incomeWindow       = 2000
)

var historyProfessions = []string{"clt", "servidor", "autonomo", "empresario"}

// ApprovalRecord is one past credit decision.
type ApprovalRecord struct {
	Score        float64
	Income       float64
	Profession   string
	Approved     bool
	ApprovedRate float64
}

// HistoryComparator matches a profile against a synthetic book of past
// decisions. The book is drawn once, on first use.
type HistoryComparator struct {
	size int
	rng  *util.Rand

	once    sync.Once
	records []ApprovalRecord
}

var _ service.HistoryComparator = (*HistoryComparator)(nil)

func NewHistoryComparator(size int, rng *util.Rand) *HistoryComparator {
	if size <= 0 {
		size = defaultHistorySize
	}
	if rng == nil {
		rng = util.NewRand(0)
	}
	return &HistoryComparator{size: size, rng: rng}
}

// NewHistoryComparatorFrom uses a fixed book of records.
func NewHistoryComparatorFrom(records []ApprovalRecord) *HistoryComparator {
	h := &HistoryComparator{records: records}
	h.once.Do(func() {})
	return h
}

func (h *HistoryComparator) book() []ApprovalRecord {
	h.once.Do(func() { h.records = generateBook(h.rng, h.size) })
	return h.records
}

func generateBook(rng *util.Rand, n int) []ApprovalRecord {
	out := make([]ApprovalRecord, n)
	for i := range out {
		score := rng.Span(300, 700)
		income := rng.Span(1000, 20000)
		profession := historyProfessions[rng.Intn(len(historyProfessions))]
		approved := score > 400 && income > 2000 && rng.Float64() > 0.2

		var rate float64
		if approved {
			rate = round(15+(1000-score)*0.02+rng.Float64()*10, 2)
		}
		out[i] = ApprovalRecord{
			Score:        math.Round(score),
			Income:       math.Round(income),
			Profession:   profession,
			Approved:     approved,
			ApprovedRate: rate,
		}
	}
	return out
}

// Compare summarizes past decisions for borrowers with a close score, a close
// income and the same profession.
func (h *HistoryComparator) Compare(ctx context.Context, p models.BorrowerProfile) models.HistoricalComparison {
	notFound := models.HistoricalComparison{Found: false, Message: "Nenhum perfil similar encontrado no histórico"}
	if p.CreditScore <= 0 || p.Income <= 0 || ctx.Err() != nil {
		return notFound
	}
	profession := strings.ToLower(strings.TrimSpace(p.Profession))

	var similar, approved int
	var rateSum float64
	minRate, maxRate := math.Inf(1), math.Inf(-1)
	for _, r := range h.book() {
		if math.Abs(r.Score-p.CreditScore) > scoreWindow ||
			math.Abs(r.Income-p.Income) > incomeWindow ||
			r.Profession != profession {
			continue
		}
		similar++
		if !r.Approved {
			continue
		}
		approved++
		rateSum += r.ApprovedRate
		minRate = math.Min(minRate, r.ApprovedRate)
		maxRate = math.Max(maxRate, r.ApprovedRate)
	}
	if similar == 0 {
		return notFound
	}

	out := models.HistoricalComparison{
		Found:           true,
		SimilarProfiles: similar,
		ApprovalPercent: round(float64(approved)/float64(similar)*100, 1),
	}
	if approved > similar-approved {
		out.Insights = append(out.Insights, "✅ Perfis similares têm alta taxa de aprovação")
	} else {
		out.Insights = append(out.Insights, "⚠️ Perfis similares têm baixa taxa de aprovação")
	}
	if approved > 0 {
		out.MeanApprovedRate = round(rateSum/float64(approved), 2)
		out.Insights = append(out.Insights, fmt.Sprintf("💰 Faixa de taxa para seu perfil: %.2f%% - %.2f%%", minRate, maxRate))
	}
	return out
}
