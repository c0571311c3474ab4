package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/domain/models"
	"CrediTech/pkg/util"
)

func TestCompare_FixedBook(t *testing.T) {
	h := NewHistoryComparatorFrom([]ApprovalRecord{
		{Score: 700, Income: 5000, Profession: "clt", Approved: true, ApprovedRate: 20},
		{Score: 720, Income: 6000, Profession: "clt", Approved: true, ApprovedRate: 22.5},
		{Score: 680, Income: 4500, Profession: "clt", Approved: false},
		{Score: 700, Income: 5000, Profession: "servidor", Approved: true, ApprovedRate: 10},
		{Score: 800, Income: 5000, Profession: "clt", Approved: true, ApprovedRate: 5},
	})

	res := h.Compare(context.Background(), models.BorrowerProfile{CreditScore: 705, Income: 5200, Profession: "CLT"})
	require.True(t, res.Found)
	assert.Equal(t, 3, res.SimilarProfiles)
	assert.Equal(t, 21.25, res.MeanApprovedRate)
	assert.Equal(t, 66.7, res.ApprovalPercent)
	assert.Equal(t, []string{
		"✅ Perfis similares têm alta taxa de aprovação",
		"💰 Faixa de taxa para seu perfil: 20.00% - 22.50%",
	}, res.Insights)
}

func TestCompare_LowApproval(t *testing.T) {
	h := NewHistoryComparatorFrom([]ApprovalRecord{
		{Score: 380, Income: 1500, Profession: "autonomo"},
		{Score: 390, Income: 1600, Profession: "autonomo"},
	})
	res := h.Compare(context.Background(), models.BorrowerProfile{CreditScore: 385, Income: 1550, Profession: "autonomo"})
	require.True(t, res.Found)
	assert.Equal(t, 0.0, res.ApprovalPercent)
	assert.Equal(t, []string{"⚠️ Perfis similares têm baixa taxa de aprovação"}, res.Insights)
}

func TestCompare_NoMatch(t *testing.T) {
	h := NewHistoryComparatorFrom(nil)
	res := h.Compare(context.Background(), models.BorrowerProfile{CreditScore: 600, Income: 4000, Profession: "clt"})
	assert.False(t, res.Found)
	assert.Equal(t, "Nenhum perfil similar encontrado no histórico", res.Message)
}

func TestCompare_SyntheticBookBuiltOnce(t *testing.T) {
	h := NewHistoryComparator(2000, util.NewRand(4))
	p := models.BorrowerProfile{CreditScore: 700, Income: 8000, Profession: "clt"}

	first := h.Compare(context.Background(), p)
	second := h.Compare(context.Background(), p)
	assert.Equal(t, first, second)
	assert.Len(t, h.book(), 2000)

	for _, r := range h.book() {
		if r.Approved {
			assert.GreaterOrEqual(t, r.Score, 400.0)
			assert.GreaterOrEqual(t, r.ApprovedRate, 15.0)
		} else {
			assert.Zero(t, r.ApprovedRate)
		}
	}
}
