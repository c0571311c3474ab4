package cluster

import (
	"CrediTech/internal/domain/models"
	"CrediTech/pkg/util"
)

var (
	professions = []string{"CLT", "Autonomo", "Servidor", "Aposentado", "Empresario"}
	purposes    = []string{"Casa", "Veiculo", "Educacao", "Saude", "Negocios"}
)

// Population draws n synthetic borrower profiles.
func Population(rng *util.Rand, n int) []models.BorrowerProfile {
	out := make([]models.BorrowerProfile, n)
	for i := range out {
		out[i] = models.BorrowerProfile{
			Age:                    rng.Span(18, 60),
			Income:                 rng.Span(1000, 20000),
			CreditScore:            rng.Span(300, 700),
			EmploymentTenureMonths: rng.Span(0, 120),
			Profession:             professions[rng.Intn(len(professions))],
			RequestedAmount:        rng.Span(1000, 100000),
			Purpose:                purposes[rng.Intn(len(purposes))],
			BankRelationshipMonths: rng.Span(0, 60),
		}
	}
	return out
}

// normalize maps a profile onto the clustering feature space.
func normalize(p models.BorrowerProfile) []float64 {
	return []float64{
		p.Age / 100,
		p.Income / 50000,
		p.CreditScore / 1000,
		p.EmploymentTenureMonths / 120,
		p.RequestedAmount / 100000,
	}
}
