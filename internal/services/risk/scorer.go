package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	"CrediTech/internal/domain/service"
	"CrediTech/pkg/logger"
)

var errInvalidInput = errors.New("risk: invalid numeric input")

const (
	weightScore        = 0.35
	weightIncome       = 0.25
	weightAge          = 0.15
	weightTenure       = 0.15
	weightRelationship = 0.10

	minLimit = 1000.0
	maxLimit = 500000.0

	assumedMonthlyRate = 0.05 // share of the amount paid per month when sizing approval and limit
	maxCommitment      = 0.30
)

var professionMultiplier = map[string]float64{
	"servidor":     1.2,
	"clt":          1.0,
	"aposentado":   0.9,
	"empresario":   0.7,
	"autonomo":     0.6,
	"desempregado": 0.3,
}

var purposeMultiplier = map[string]float64{
	"casa":         0.8,
	"veiculo":      0.9,
	"educacao":     1.0,
	"saude":        1.1,
	"consolidacao": 1.2,
	"consumo":      1.3,
	"negocios":     1.1,
}

// purposeRateFactor adjusts the suggested rate for secured or riskier purposes.
var purposeRateFactor = map[string]float64{
	"casa":         0.6,
	"veiculo":      0.7,
	"consolidacao": 1.2,
}

// Scorer is the deterministic multi-factor risk engine. Zero numeric fields
// are treated as not supplied and skip every rule that reads them.
type Scorer struct {
	l       *logger.Logger
	metrics domrepo.Metrics
}

var _ service.RiskAssessor = (*Scorer)(nil)

func NewScorer(l *logger.Logger, m domrepo.Metrics) *Scorer {
	if m == nil {
		m = domrepo.NoopMetrics{}
	}
	return &Scorer{l: logger.OrNop(l).Component("risk_scorer"), metrics: m}
}

// Assess never fails: invalid input or an internal fault yields the default assessment.
func (s *Scorer) Assess(p models.BorrowerProfile) (out models.RiskAssessment) {
	defer func() {
		if r := recover(); r != nil {
			s.l.Error("risk assessment panicked", logger.Any("panic", fmt.Sprint(r)))
			out = Default(p)
		}
		s.metrics.RecordAssessment(out.Classification, out.Degraded)
	}()

	if err := validate(p); err != nil {
		s.l.Warn("using default assessment", logger.Error(err))
		return Default(p)
	}
	return assess(p)
}

func validate(p models.BorrowerProfile) error {
	for name, v := range map[string]float64{
		"age":                      p.Age,
		"income":                   p.Income,
		"employment_tenure_months": p.EmploymentTenureMonths,
		"credit_score":             p.CreditScore,
		"requested_amount":         p.RequestedAmount,
		"bank_relationship_months": p.BankRelationshipMonths,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s=%v", errInvalidInput, name, v)
		}
	}
	return nil
}

func assess(p models.BorrowerProfile) models.RiskAssessment {
	score := Score(p)
	a := models.RiskAssessment{
		RiskScore:           score,
		Classification:      Classify(score),
		ApprovalProbability: approvalProbability(score, p),
		SuggestedRate:       suggestedRate(score, p),
		SuggestedLimit:      suggestedLimit(score, p),
	}
	a.PositiveFactors, a.NegativeFactors = factors(p, a.SuggestedRate)
	a.Recommendations = recommendations(score, a.NegativeFactors)
	a.Alerts = alerts(p, a.SuggestedRate)
	return a
}

// Score is the weighted, multiplier-adjusted composite in [0, 1000].
func Score(p models.BorrowerProfile) int {
	var s float64
	if p.CreditScore > 0 {
		s += creditBand(p.CreditScore) * weightScore
	}
	if p.Income > 0 {
		s += incomeBand(p.Income) * weightIncome
	}
	if p.Age > 0 {
		s += ageBand(p.Age) * weightAge
	}
	if p.EmploymentTenureMonths > 0 {
		s += tenureBand(p.EmploymentTenureMonths) * weightTenure
	}
	if p.BankRelationshipMonths > 0 {
		s += relationshipBand(p.BankRelationshipMonths) * weightRelationship
	}
	s *= lookup(professionMultiplier, p.Profession)
	s *= lookup(purposeMultiplier, p.Purpose)

	return int(math.Min(1000, math.Max(0, math.Round(s*1000))))
}

func lookup(table map[string]float64, key string) float64 {
	if v, ok := table[strings.ToLower(strings.TrimSpace(key))]; ok {
		return v
	}
	return 1.0
}

func creditBand(v float64) float64 {
	switch {
	case v >= 800:
		return 1.0
	case v >= 700:
		return 0.9
	case v >= 600:
		return 0.7
	case v >= 500:
		return 0.5
	case v >= 400:
		return 0.3
	}
	return 0.1
}

func incomeBand(v float64) float64 {
	switch {
	case v >= 20000:
		return 1.0
	case v >= 10000:
		return 0.8
	case v >= 5000:
		return 0.6
	case v >= 3000:
		return 0.4
	case v >= 1500:
		return 0.2
	}
	return 0.1
}

func ageBand(v float64) float64 {
	switch {
	case v >= 25 && v <= 55:
		return 1.0
	case v >= 18 && v < 25:
		return 0.7
	case v > 55 && v <= 65:
		return 0.8
	case v > 65:
		return 0.6
	}
	return 0.3
}

func tenureBand(months float64) float64 {
	switch {
	case months >= 60:
		return 1.0
	case months >= 36:
		return 0.8
	case months >= 24:
		return 0.6
	case months >= 12:
		return 0.4
	case months >= 6:
		return 0.2
	}
	return 0.1
}

func relationshipBand(months float64) float64 {
	switch {
	case months >= 24:
		return 1.0
	case months >= 12:
		return 0.7
	case months >= 6:
		return 0.5
	}
	return 0.3
}

// Classify maps a risk score to its label.
func Classify(score int) string {
	switch {
	case score >= 800:
		return "Excelente"
	case score >= 700:
		return "Muito Bom"
	case score >= 600:
		return "Bom"
	case score >= 500:
		return "Regular"
	case score >= 400:
		return "Ruim"
	}
	return "Muito Ruim"
}

func approvalProbability(score int, p models.BorrowerProfile) int {
	prob := float64(score) / 10
	if p.CreditScore > 0 && p.CreditScore < 400 {
		prob *= 0.5
	}
	if p.Income > 0 && p.Income < 2000 {
		prob *= 0.7
	}
	if p.Age > 0 && p.Age < 21 {
		prob *= 0.8
	}
	if p.EmploymentTenureMonths > 0 && p.EmploymentTenureMonths < 6 {
		prob *= 0.6
	}
	if p.RequestedAmount > 0 && p.Income > 0 && p.RequestedAmount*assumedMonthlyRate/p.Income > maxCommitment {
		prob *= 0.5
	}
	return int(math.Min(95, math.Max(5, math.Round(prob))))
}

func rateBand(score int) float64 {
	switch {
	case score >= 800:
		return 15
	case score >= 700:
		return 18
	case score >= 600:
		return 22
	case score >= 500:
		return 28
	case score >= 400:
		return 35
	}
	return 45
}

func suggestedRate(score int, p models.BorrowerProfile) float64 {
	rate := rateBand(score)
	if f, ok := purposeRateFactor[strings.ToLower(strings.TrimSpace(p.Purpose))]; ok {
		rate *= f
	}
	switch {
	case p.RequestedAmount > 100000:
		rate *= 0.9
	case p.RequestedAmount > 50000:
		rate *= 0.95
	}
	return round(rate, 2)
}

func suggestedLimit(score int, p models.BorrowerProfile) float64 {
	limit := p.Income * 10 * float64(score) / 1000
	limit = math.Min(limit, p.Income*maxCommitment/assumedMonthlyRate)
	return math.Round(clampLimit(limit))
}

func clampLimit(v float64) float64 {
	return math.Min(maxLimit, math.Max(minLimit, v))
}

// commitment is the monthly payment at the suggested rate over income.
func commitment(p models.BorrowerProfile, rate float64) (float64, bool) {
	if p.RequestedAmount <= 0 || p.Income <= 0 {
		return 0, false
	}
	return p.RequestedAmount * rate / 100 / p.Income, true
}

func factors(p models.BorrowerProfile, rate float64) (positive, negative []string) {
	positive, negative = []string{}, []string{}
	profession := strings.ToLower(strings.TrimSpace(p.Profession))

	if p.CreditScore >= 700 {
		positive = append(positive, "Score de crédito excelente")
	}
	if p.Income >= 10000 {
		positive = append(positive, "Renda alta")
	}
	if p.Age >= 25 && p.Age <= 55 {
		positive = append(positive, "Faixa etária ideal")
	}
	if p.EmploymentTenureMonths >= 36 {
		positive = append(positive, "Estabilidade no emprego")
	}
	if p.BankRelationshipMonths >= 24 {
		positive = append(positive, "Relacionamento longo com o banco")
	}
	if profession == "servidor" {
		positive = append(positive, "Profissão de baixo risco")
	}

	if p.CreditScore > 0 && p.CreditScore < 500 {
		negative = append(negative, factorLowScore)
	}
	if p.Income > 0 && p.Income < 3000 {
		negative = append(negative, factorLimitedIncome)
	}
	if p.Age > 0 && p.Age < 21 {
		negative = append(negative, "Pouca experiência de crédito")
	}
	if p.EmploymentTenureMonths < 12 {
		negative = append(negative, "Pouco tempo no emprego atual")
	}
	if profession == "desempregado" {
		negative = append(negative, "Sem comprovação de renda")
	}
	if c, ok := commitment(p, rate); ok && c > maxCommitment {
		negative = append(negative, "Alto comprometimento de renda")
	}
	return positive, negative
}

const (
	factorLowScore      = "Score de crédito baixo"
	factorLimitedIncome = "Renda limitada"
)

func recommendations(score int, negative []string) []string {
	var out []string
	switch {
	case score >= 700:
		out = []string{
			"Você tem perfil para as melhores condições do mercado",
			"Negocie desconto nas taxas oferecidas",
			"Considere aumentar o valor se necessário",
		}
	case score >= 500:
		out = []string{
			"Perfil adequado para crédito, mas compare opções",
			"Considere oferecer garantias para melhores taxas",
			"Evite comprometer mais de 30% da renda",
		}
	default:
		out = []string{
			"Trabalhe na melhoria do seu score antes de solicitar",
			"Considere modalidades com garantia (veículo, imóvel)",
			"Comece com valores menores",
		}
	}
	if contains(negative, factorLowScore) {
		out = append(out,
			"Quite pendências e negocie dívidas em atraso",
			"Mantenha dados atualizados nos órgãos de proteção")
	}
	if contains(negative, factorLimitedIncome) {
		out = append(out,
			"Comprove renda extra se possuir",
			"Considere ter um avalista")
	}
	return out
}

func alerts(p models.BorrowerProfile, rate float64) []string {
	out := []string{}
	if c, ok := commitment(p, rate); ok {
		switch {
		case c > 0.5:
			out = append(out, "⚠️ RISCO ALTO: Comprometimento acima de 50% da renda")
		case c > maxCommitment:
			out = append(out, "⚠️ ATENÇÃO: Comprometimento acima de 30% da renda")
		}
	}
	if p.CreditScore > 0 && p.CreditScore < 400 {
		out = append(out, "⚠️ Score muito baixo - risco de não aprovação")
	}
	if p.Age > 0 && p.Age < 21 {
		out = append(out, "⚠️ Menor de 21 anos - documentação adicional necessária")
	}
	if p.EmploymentTenureMonths < 6 {
		out = append(out, "⚠️ Pouco tempo de emprego - pode afetar aprovação")
	}
	if p.RequestedAmount > 100000 {
		out = append(out, "⚠️ Valor alto - análise mais rigorosa será necessária")
	}
	return out
}

// Default is the fixed assessment returned when the input cannot be scored.
func Default(p models.BorrowerProfile) models.RiskAssessment {
	income := p.Income
	if !(income > 0) || math.IsInf(income, 0) {
		income = 3000
	}
	return models.RiskAssessment{
		RiskScore:           500,
		Classification:      "Regular",
		ApprovalProbability: 50,
		SuggestedRate:       25.0,
		SuggestedLimit:      math.Round(clampLimit(income * 5)),
		PositiveFactors:     []string{"Análise básica realizada"},
		NegativeFactors:     []string{"Dados incompletos para análise detalhada"},
		Recommendations:     []string{"Forneça mais informações para análise precisa"},
		Alerts:              []string{"⚠️ Análise limitada - dados incompletos"},
		Degraded:            true,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
