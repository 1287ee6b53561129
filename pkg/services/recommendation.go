package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillbridge-inc/skillbridge-engine/pkg/models"
	"github.com/skillbridge-inc/skillbridge-engine/pkg/repositories"
)

// Recommendation tuning. The thresholds are intentionally asymmetric: an
// expert browsing projects sees only strong matches, while an institution
// staffing a project gets a wider net.
const (
	projectScoreThreshold = 60
	expertScoreThreshold  = 40
	maxRecommendations    = 10
)

// ProjectRecommendation is a scored project suggested to an expert,
// annotated with the project's application counts.
type ProjectRecommendation struct {
	Project      *models.Project          `json:"project"`
	Score        int                      `json:"score"`
	Applications models.ApplicationCounts `json:"applications"`
}

// ExpertRecommendation is a scored expert suggested for a project.
type ExpertRecommendation struct {
	Expert *models.Expert `json:"expert"`
	Score  int            `json:"score"`
}

// RecommendationService ranks match candidates for experts and projects.
type RecommendationService interface {
	RecommendProjectsForExpert(ctx context.Context, expertID uuid.UUID) ([]*ProjectRecommendation, error)
	RecommendExpertsForProject(ctx context.Context, projectID uuid.UUID) ([]*ExpertRecommendation, error)
}

type recommendationService struct {
	experts      repositories.ExpertRepository
	projects     repositories.ProjectRepository
	applications repositories.ApplicationRepository
	logger       *zap.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	experts repositories.ExpertRepository,
	projects repositories.ProjectRepository,
	applications repositories.ApplicationRepository,
	logger *zap.Logger,
) RecommendationService {
	return &recommendationService{
		experts:      experts,
		projects:     projects,
		applications: applications,
		logger:       logger.Named("recommendation-service"),
	}
}

var _ RecommendationService = (*recommendationService)(nil)

// RecommendProjectsForExpert returns up to ten open projects the expert has
// not yet applied to, scored at least 60, best first.
func (s *recommendationService) RecommendProjectsForExpert(ctx context.Context, expertID uuid.UUID) ([]*ProjectRecommendation, error) {
	expert, err := s.experts.Get(ctx, expertID)
	if err != nil {
		return nil, err
	}

	appliedIDs, err := s.applications.ListProjectIDsByExpert(ctx, expertID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applied projects: %w", err)
	}

	candidates, err := s.projects.ListOpen(ctx, appliedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate projects: %w", err)
	}

	recs := make([]*ProjectRecommendation, 0, len(candidates))
	for _, project := range candidates {
		score := ScoreMatch(expert, project)
		if score < projectScoreThreshold {
			continue
		}
		recs = append(recs, &ProjectRecommendation{Project: project, Score: score})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	if err := s.attachApplicationCounts(ctx, recs); err != nil {
		// Annotation only; the ranking itself is still valid.
		s.logger.Warn("Failed to attach application counts",
			zap.String("expert_id", expertID.String()),
			zap.Error(err))
	}

	return recs, nil
}

// RecommendExpertsForProject returns up to ten verified experts scored at
// least 40 against the project, best first.
func (s *recommendationService) RecommendExpertsForProject(ctx context.Context, projectID uuid.UUID) ([]*ExpertRecommendation, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.experts.ListVerified(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate experts: %w", err)
	}

	recs := make([]*ExpertRecommendation, 0, len(candidates))
	for _, expert := range candidates {
		score := ScoreMatch(expert, project)
		if score < expertScoreThreshold {
			continue
		}
		recs = append(recs, &ExpertRecommendation{Expert: expert, Score: score})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	return recs, nil
}

// attachApplicationCounts annotates recommendations with per-project
// application totals in one grouped query.
func (s *recommendationService) attachApplicationCounts(ctx context.Context, recs []*ProjectRecommendation) error {
	if len(recs) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.Project.ID
	}

	counts, err := s.applications.CountsByProjects(ctx, ids)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		c := counts[rec.Project.ID]
		c.ProjectID = rec.Project.ID
		rec.Applications = c
	}

	return nil
}
