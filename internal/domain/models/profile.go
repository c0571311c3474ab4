package models

import "time"

// BorrowerProfile is the input of the risk and segmentation engines.
// Zero numeric fields mean the value was not supplied.
type BorrowerProfile struct {
	Age                    float64 `json:"age" query:"age" validate:"gte=0,lte=120"`
	Income                 float64 `json:"income" query:"income" validate:"gte=0"`
	EmploymentTenureMonths float64 `json:"employment_tenure_months" query:"employment_tenure_months" validate:"gte=0"`
	CreditScore            float64 `json:"credit_score" query:"credit_score" validate:"gte=0,lte=1000"`
	Profession             string  `json:"profession" query:"profession"`
	Purpose                string  `json:"purpose" query:"purpose"`
	RequestedAmount        float64 `json:"requested_amount" query:"requested_amount" validate:"gte=0"`
	BankRelationshipMonths float64 `json:"bank_relationship_months" query:"bank_relationship_months" validate:"gte=0"`
}

// ClusterDescriptor summarizes one borrower segment.
type ClusterDescriptor struct {
	ID                  int     `json:"id"`
	Size                int     `json:"size"`
	SizeShare           float64 `json:"size_share"` // percent of the population
	MeanAge             float64 `json:"mean_age"`
	MeanIncome          float64 `json:"mean_income"`
	MeanScore           float64 `json:"mean_score"`
	MeanRequestedAmount float64 `json:"mean_requested_amount"`
	Label               string  `json:"label"`
	SuggestedRate       float64 `json:"suggested_rate"`
}

// ClusterSet is the batch of segments published by one clustering run.
type ClusterSet struct {
	Version        int64               `json:"version"`
	BuiltAt        time.Time           `json:"built_at"`
	PopulationSize int                 `json:"population_size"`
	Iterations     int                 `json:"iterations"`
	Clusters       []ClusterDescriptor `json:"clusters"`
}

// Classification is the nearest-segment result for a profile. When Available is
// false no cluster set has been published yet.
type Classification struct {
	Available       bool               `json:"available"`
	Message         string             `json:"message,omitempty"`
	Cluster         *ClusterDescriptor `json:"cluster,omitempty"`
	Distance        float64            `json:"distance"`
	Similarity      float64            `json:"similarity"`
	SimilarityLabel string             `json:"similarity_label,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
}

// RiskAssessment is the explainable output of the risk scorer.
type RiskAssessment struct {
	RiskScore           int      `json:"risk_score"`
	Classification      string   `json:"classification"`
	ApprovalProbability int      `json:"approval_probability"`
	SuggestedRate       float64  `json:"suggested_rate"`
	SuggestedLimit      float64  `json:"suggested_limit"`
	PositiveFactors     []string `json:"positive_factors"`
	NegativeFactors     []string `json:"negative_factors"`
	Recommendations     []string `json:"recommendations"`
	Alerts              []string `json:"alerts"`
	Degraded            bool     `json:"degraded,omitempty"`
}

// HistoricalComparison compares a profile with past approvals of similar borrowers.
type HistoricalComparison struct {
	Found            bool     `json:"found"`
	Message          string   `json:"message,omitempty"`
	SimilarProfiles  int      `json:"similar_profiles"`
	MeanApprovedRate float64  `json:"mean_approved_rate"`
	ApprovalPercent  float64  `json:"approval_percent"`
	Insights         []string `json:"insights,omitempty"`
}

// ProfileAnalysis aggregates every per-profile view. Errors holds the parts that
// could not be produced.
type ProfileAnalysis struct {
	Assessment *RiskAssessment       `json:"assessment,omitempty"`
	Cluster    *Classification       `json:"cluster,omitempty"`
	History    *HistoricalComparison `json:"history,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
	Errors     map[string]string     `json:"errors,omitempty"`
}
