package validator

import (
	"encoding/json"
	"math"
	"time"
)

// Summary aggregates stored validation records for one learner over a
// trailing window of days.
type Summary struct {
	PeriodDays        int                `json:"period_days"`
	TotalInteractions int                `json:"total_interactions"`
	AvgOverallScore   float64            `json:"avg_overall_score"`
	ApprovalRate      float64            `json:"approval_rate"`
	BiasDetectionRate float64            `json:"bias_detection_rate"`
	AvgQualityScores  map[string]float64 `json:"avg_quality_scores"`
	Recommendations   []string           `json:"recommendations"`
	Message           string             `json:"message,omitempty"`
}

func (v *Validator) Summary(learnerID int64, days int) (*Summary, error) {
	if days <= 0 {
		days = 7
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	interactions, err := v.store.ValidatedSince(learnerID, cutoff)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		PeriodDays:       days,
		AvgQualityScores: make(map[string]float64),
		Recommendations:  []string{},
	}

	if len(interactions) == 0 {
		summary.Message = "No validated interactions found"
		return summary, nil
	}

	totalScore := 0.0
	approved := 0
	biased := 0
	qualityTotals := make(map[string]float64)
	qualityCounts := make(map[string]int)

	for _, it := range interactions {
		var result Result
		if err := json.Unmarshal([]byte(*it.CheckerValidation), &result); err != nil {
			// skip records that predate the current serialization
			continue
		}

		summary.TotalInteractions++
		totalScore += result.OverallScore
		if result.Approved {
			approved++
		}
		if len(result.DetectedBiases) > 0 {
			biased++
		}
		for _, c := range qualityCriteria {
			if qs, ok := result.QualityScores[c.name]; ok {
				qualityTotals[c.name] += qs.Score
				qualityCounts[c.name]++
			}
		}
	}

	if summary.TotalInteractions == 0 {
		summary.Message = "No validated interactions found"
		return summary, nil
	}

	n := float64(summary.TotalInteractions)
	summary.AvgOverallScore = round3(totalScore / n)
	summary.ApprovalRate = round3(float64(approved) / n)
	summary.BiasDetectionRate = round3(float64(biased) / n)

	for _, c := range qualityCriteria {
		if qualityCounts[c.name] > 0 {
			summary.AvgQualityScores[c.name] = qualityTotals[c.name] / float64(qualityCounts[c.name])
		} else {
			summary.AvgQualityScores[c.name] = 0
		}
	}

	summary.Recommendations = learnerRecommendations(summary.AvgQualityScores, summary.AvgOverallScore)

	return summary, nil
}

func learnerRecommendations(qualityScores map[string]float64, overall float64) []string {
	var recommendations []string

	if overall < 0.7 {
		recommendations = append(recommendations, "Focus on improving overall response quality")
	}

	for _, c := range qualityCriteria {
		if qualityScores[c.name] < 0.7 {
			recommendations = append(recommendations, "Improve "+c.name+" in responses")
		}
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Maintain current high quality standards")
	}

	return recommendations
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
