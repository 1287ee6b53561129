// Package services implements the business operations of skillbridge-engine:
// match scoring, recommendation ranking, the application/booking lifecycle
// and rating aggregation.
package services

import (
	"math"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
)

// Match scoring weights. The four terms sum to at most 100.
const (
	domainMatchWeight      = 40
	subskillOverlapWeight  = 30
	generalOverlapWeight   = 20
	rateCompatibilityScore = 10

	// Rate bands: within 20% of the project rate earns full points,
	// within 50% earns half.
	rateFullBand = 0.20
	rateHalfBand = 0.50

	maxMatchScore = 100
)

// ScoreMatch computes a 0-100 compatibility score between an expert and a
// project. The same weights apply whether ranking experts for a project or
// projects for an expert. The function is pure: identical inputs always
// produce the identical score, and missing fields degrade to a zero
// contribution for their term rather than failing.
func ScoreMatch(expert *models.Expert, project *models.Project) int {
	var score float64

	// Domain match: the project carries a single domain tag, the expert a
	// set; membership earns the full weight.
	if project.DomainExpertise != "" && expert.HasDomain(project.DomainExpertise) {
		score += domainMatchWeight
	}

	score += overlapScore(project.Subskills, expert.Subskills, subskillOverlapWeight)
	score += overlapScore(project.GeneralSkills, expert.GeneralSkills, generalOverlapWeight)
	score += rateScore(expert.HourlyRate, project.HourlyRate)

	total := int(math.Round(score))
	if total > maxMatchScore {
		total = maxMatchScore
	}
	if total < 0 {
		total = 0
	}
	return total
}

// overlapScore awards weight * matched/required. A project with no
// requirements in this category contributes nothing.
func overlapScore(required, offered []string, weight float64) float64 {
	if len(required) == 0 {
		return 0
	}

	offeredSet := make(map[string]struct{}, len(offered))
	for _, s := range offered {
		offeredSet[s] = struct{}{}
	}

	matched := 0
	for _, s := range required {
		if _, ok := offeredSet[s]; ok {
			matched++
		}
	}

	return weight * float64(matched) / float64(len(required))
}

// rateScore awards points for hourly-rate proximity. Skipped entirely when
// either rate is unset or zero.
func rateScore(expertRate, projectRate float64) float64 {
	if expertRate <= 0 || projectRate <= 0 {
		return 0
	}

	diff := math.Abs(expertRate-projectRate) / projectRate
	switch {
	case diff <= rateFullBand:
		return rateCompatibilityScore
	case diff <= rateHalfBand:
		return rateCompatibilityScore / 2
	default:
		return 0
	}
}
