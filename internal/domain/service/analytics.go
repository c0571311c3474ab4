package service

import (
	"context"

	"CrediTech/internal/domain/models"
)

// Forecaster produces forward rate predictions for a trained category.
type Forecaster interface {
	Predict(category string, horizonDays int) (models.Forecast, error)
}

// ProfileClassifier assigns a profile to the nearest published segment.
type ProfileClassifier interface {
	Classify(p models.BorrowerProfile) models.Classification
	Current() (models.ClusterSet, bool)
}

// RiskAssessor scores a borrower profile. It never fails.
type RiskAssessor interface {
	Assess(p models.BorrowerProfile) models.RiskAssessment
}

// HistoryComparator compares a profile with past approvals.
type HistoryComparator interface {
	Compare(ctx context.Context, p models.BorrowerProfile) models.HistoricalComparison
}
