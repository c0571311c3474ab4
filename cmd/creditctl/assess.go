package main

import (
	"github.com/spf13/cobra"

	"CrediTech/internal/domain/models"
	"CrediTech/internal/services/risk"
)

func assessCmd(g *globalFlags) *cobra.Command {
	var p models.BorrowerProfile
	var compare bool

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score a borrower profile",
		Example: `  creditctl assess --age 35 --income 8000 --score 750 --profession servidor \
    --purpose veiculo --amount 30000 --tenure 36 --relationship 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			out := struct {
				Assessment models.RiskAssessment        `json:"assessment"`
				Comparison *models.HistoricalComparison `json:"comparison,omitempty"`
			}{
				Assessment: risk.NewScorer(g.logger(), nil).Assess(p),
			}
			if compare {
				c := risk.NewHistoryComparator(cfg.Analytics.HistorySamples, g.rand(cfg)).Compare(cmd.Context(), p)
				out.Comparison = &c
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&p.Age, "age", 0, "age in years")
	f.Float64Var(&p.Income, "income", 0, "monthly income")
	f.Float64Var(&p.EmploymentTenureMonths, "tenure", 0, "employment tenure in months")
	f.Float64Var(&p.CreditScore, "score", 0, "credit score (0-1000)")
	f.StringVar(&p.Profession, "profession", "", "clt, servidor, autonomo, empresario, aposentado...")
	f.StringVar(&p.Purpose, "purpose", "", "imovel, veiculo, educacao, pessoal...")
	f.Float64Var(&p.RequestedAmount, "amount", 0, "requested amount")
	f.Float64Var(&p.BankRelationshipMonths, "relationship", 0, "bank relationship in months")
	f.BoolVar(&compare, "compare", true, "include the historical comparison")
	return cmd
}
