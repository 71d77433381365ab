// Package validator scores a generated response for quality, educational
// compliance, bias and cross-turn consistency before release. Every score is
// a deterministic function of the response text and recent history: lexical
// and regex matching only, bounded to [0,1], with an explanation attached.
package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MLiu666/EvoWrite/internal/store"
)

const consistencyWindow = 5

type QualityScore struct {
	Score          float64  `json:"score"`
	MeetsThreshold bool     `json:"meets_threshold"`
	PositiveFound  []string `json:"positive_indicators_found"`
	NegativeFound  []string `json:"negative_indicators_found"`
}

type ComplianceScore struct {
	Score           float64         `json:"score"`
	Compliant       bool            `json:"compliant"`
	RequirementsMet map[string]bool `json:"requirements_met"`
}

type BiasDetail struct {
	Matches  []string `json:"matches"`
	Severity string   `json:"severity"`
}

type AspectScore struct {
	Score       float64 `json:"score"`
	Consistent  bool    `json:"consistent"`
	Description string  `json:"description"`
}

type Result struct {
	OverallScore          float64                    `json:"overall_score"`
	QualityScores         map[string]QualityScore    `json:"quality_scores"`
	EducationalCompliance map[string]ComplianceScore `json:"educational_compliance"`
	DetectedBiases        []string                   `json:"detected_biases"`
	BiasDetails           map[string]BiasDetail      `json:"bias_details"`
	BiasFree              bool                       `json:"bias_free"`
	ConsistencyAspects    map[string]AspectScore     `json:"consistency_aspects"`
	OverallConsistency    float64                    `json:"overall_consistency"`
	Consistent            bool                       `json:"consistent"`
	Recommendations       []string                   `json:"recommendations"`
	Approved              bool                       `json:"approved"`
}

type Validator struct {
	store *store.Store
}

func New(s *store.Store) *Validator {
	return &Validator{store: s}
}

// Validate scores a candidate response for the given learner and writes the
// serialized result onto the interaction record. Approval requires both the
// weighted score threshold and zero detected bias categories: a high-scoring
// response is still rejected if any bias pattern matches.
func (v *Validator) Validate(response string, learnerID, interactionID int64) (*Result, error) {
	result := v.Score(response, learnerID)

	serialized, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if err := v.store.SetValidation(interactionID, string(serialized)); err != nil {
		return nil, err
	}

	return result, nil
}

// Score runs all four sub-scorers without touching storage.
func (v *Validator) Score(response string, learnerID int64) *Result {
	result := &Result{
		QualityScores:         make(map[string]QualityScore),
		EducationalCompliance: make(map[string]ComplianceScore),
		BiasDetails:           make(map[string]BiasDetail),
		ConsistencyAspects:    make(map[string]AspectScore),
		DetectedBiases:        []string{},
		Recommendations:       []string{},
	}

	v.assessQuality(response, result)
	v.checkStandards(response, result)
	v.detectBias(response, result)
	v.checkConsistency(response, learnerID, result)

	qualitySum := 0.0
	for _, c := range qualityCriteria {
		qualitySum += result.QualityScores[c.name].Score
	}
	complianceSum := 0.0
	for _, s := range educationalStandards {
		complianceSum += result.EducationalCompliance[s.name].Score
	}

	biasScore := 0.0
	if result.BiasFree {
		biasScore = 1.0
	}

	overall := 0.4*(qualitySum/float64(len(qualityCriteria))) +
		0.3*(complianceSum/float64(len(educationalStandards))) +
		0.2*biasScore +
		0.1*result.OverallConsistency
	result.OverallScore = round3(overall)

	result.Approved = result.OverallScore >= 0.7 && len(result.DetectedBiases) == 0

	v.recommend(result)

	return result
}

// assessQuality scores each criterion from indicator phrase hits. An empty
// response matches nothing and scores zero everywhere.
func (v *Validator) assessQuality(response string, result *Result) {
	lower := strings.ToLower(response)

	for _, c := range qualityCriteria {
		qs := QualityScore{
			PositiveFound: []string{},
			NegativeFound: []string{},
		}

		for _, indicator := range c.positive {
			if strings.Contains(lower, indicator) {
				qs.PositiveFound = append(qs.PositiveFound, indicator)
			}
		}
		for _, indicator := range c.negative {
			if strings.Contains(lower, indicator) {
				qs.NegativeFound = append(qs.NegativeFound, indicator)
			}
		}

		positiveRatio := float64(len(qs.PositiveFound)) / float64(len(c.positive))
		penalty := 0.2 * float64(len(qs.NegativeFound))

		qs.Score = clamp(positiveRatio - penalty)
		qs.MeetsThreshold = qs.Score >= c.minScore

		result.QualityScores[c.name] = qs
	}
}

func (v *Validator) checkStandards(response string, result *Result) {
	lower := strings.ToLower(response)

	for _, std := range educationalStandards {
		cs := ComplianceScore{RequirementsMet: make(map[string]bool)}

		met := 0
		for _, req := range std.requirements {
			ok := requirementMet(lower, req)
			cs.RequirementsMet[req] = ok
			if ok {
				met++
			}
		}

		cs.Score = float64(met) / float64(len(std.requirements))
		cs.Compliant = cs.Score >= 0.7

		result.EducationalCompliance[std.name] = cs
	}
}

// requirementMet applies the per-requirement heuristic, keyed off words in
// the requirement text. Unrecognized requirements count as satisfied.
func requirementMet(content, requirement string) bool {
	req := strings.ToLower(requirement)

	switch {
	case strings.Contains(req, "appropriate"):
		return len(content) > 50
	case strings.Contains(req, "scaffolded"):
		return strings.Contains(content, "step") ||
			strings.Contains(content, "first") ||
			strings.Contains(content, "next")
	case strings.Contains(req, "self-regulation"):
		for _, kw := range srlKeywords {
			if strings.Contains(content, kw) {
				return true
			}
		}
		return false
	case strings.Contains(req, "cultural"):
		return !strings.Contains(content, "culture") || strings.Contains(content, "inclusive")
	case strings.Contains(req, "evidence"):
		return strings.Contains(content, "research") ||
			strings.Contains(content, "study") ||
			strings.Contains(content, "evidence")
	}

	return true
}

func (v *Validator) detectBias(response string, result *Result) {
	for _, cat := range biasCategories {
		var matches []string
		for _, p := range cat.patterns {
			matches = append(matches, p.FindAllString(response, -1)...)
		}

		if len(matches) == 0 {
			continue
		}

		result.DetectedBiases = append(result.DetectedBiases, cat.name)
		result.BiasDetails[cat.name] = BiasDetail{
			Matches:  matches,
			Severity: biasSeverity(len(matches)),
		}
	}

	result.BiasFree = len(result.DetectedBiases) == 0
}

func biasSeverity(matchCount int) string {
	switch {
	case matchCount >= 3:
		return "high"
	case matchCount >= 2:
		return "medium"
	default:
		return "low"
	}
}

// checkConsistency compares the response against up to five recent prior
// responses for the same learner. Only tone has concrete logic; the other
// aspects carry a fixed placeholder score. A learner with no prior responses
// is vacuously consistent.
func (v *Validator) checkConsistency(response string, learnerID int64, result *Result) {
	var priorResponses []string
	if learnerID != 0 {
		recent, err := v.store.RecentResponded(learnerID, consistencyWindow)
		if err == nil {
			for _, it := range recent {
				if it.AssistantResponse != nil {
					priorResponses = append(priorResponses, *it.AssistantResponse)
				}
			}
		}
	}

	sum := 0.0
	for _, aspect := range consistencyAspects {
		score := aspectScore(response, priorResponses, aspect.name)
		result.ConsistencyAspects[aspect.name] = AspectScore{
			Score:       score,
			Consistent:  score >= 0.7,
			Description: aspect.description,
		}
		sum += score
	}

	result.OverallConsistency = sum / float64(len(consistencyAspects))
	result.Consistent = result.OverallConsistency >= 0.7
}

func aspectScore(response string, priorResponses []string, aspect string) float64 {
	if len(priorResponses) == 0 {
		return 1.0
	}

	if aspect != "tone" {
		// placeholder pending real per-aspect logic
		return 0.8
	}

	currentEncouraging := containsEncouraging(response)

	pastEncouraging := 0
	for _, prior := range priorResponses {
		if containsEncouraging(prior) {
			pastEncouraging++
		}
	}
	pastRatio := float64(pastEncouraging) / float64(len(priorResponses))

	// consistent when the current response keeps (or keeps avoiding) the
	// established encouraging register
	if pastRatio > 0.5 && currentEncouraging {
		return 1.0
	}
	if pastRatio <= 0.5 && !currentEncouraging {
		return 1.0
	}
	return 0.5
}

func containsEncouraging(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range encouragingWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func (v *Validator) recommend(result *Result) {
	for _, c := range qualityCriteria {
		qs := result.QualityScores[c.name]
		if !qs.MeetsThreshold {
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("Improve %s: Current score %.2f is below threshold %.2f", c.name, qs.Score, c.minScore))
		}
	}

	for _, std := range educationalStandards {
		cs := result.EducationalCompliance[std.name]
		if !cs.Compliant {
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("Address %s compliance: Score %.2f", std.name, cs.Score))
		}
	}

	for _, bias := range result.DetectedBiases {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Remove %s from response", bias))
	}

	for _, aspect := range consistencyAspects {
		as := result.ConsistencyAspects[aspect.name]
		if !as.Consistent {
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("Improve consistency in %s", aspect.name))
		}
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
