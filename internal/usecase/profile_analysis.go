package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CrediTech/internal/domain/models"
	domsvc "CrediTech/internal/domain/service"
)

// ProfileAnalysis runs every per-profile view concurrently.
type ProfileAnalysis struct {
	risk       domsvc.RiskAssessor
	classifier domsvc.ProfileClassifier
	history    domsvc.HistoryComparator
	timeout    time.Duration
	now        func() time.Time
}

func NewProfileAnalysis(risk domsvc.RiskAssessor, classifier domsvc.ProfileClassifier, history domsvc.HistoryComparator) *ProfileAnalysis {
	return &ProfileAnalysis{risk: risk, classifier: classifier, history: history, timeout: 10 * time.Second, now: time.Now}
}

// Analyze never fails as a whole; parts that could not be produced are named in Errors.
func (uc *ProfileAnalysis) Analyze(ctx context.Context, p models.BorrowerProfile) models.ProfileAnalysis {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := models.ProfileAnalysis{Timestamp: uc.now(), Errors: map[string]string{}}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	run := func(name string, f func() interface{}) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					ch <- item{name: name, err: fmt.Errorf("panic: %v", r)}
				}
			}()
			ch <- item{name: name, val: f()}
		}()
	}
	run("assessment", func() interface{} { return uc.risk.Assess(p) })
	run("cluster", func() interface{} { return uc.classifier.Classify(p) })
	run("history", func() interface{} { return uc.history.Compare(ctx, p) })

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch v := it.val.(type) {
		case models.RiskAssessment:
			res.Assessment = &v
		case models.Classification:
			res.Cluster = &v
		case models.HistoricalComparison:
			res.History = &v
		}
	}
	if ctx.Err() != nil && res.History != nil && !res.History.Found {
		res.Errors["history"] = ctx.Err().Error()
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res
}
