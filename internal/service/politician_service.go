package service

import (
	"errors"
	"io"
	"log"

	"politicianfinder/internal/model"
	"politicianfinder/internal/repository"
	"politicianfinder/internal/util"

	"gorm.io/gorm"
)

// rankingKey is the Redis sorted set that orders politicians by their
// combined score.
const rankingKey = "politician:ranking"

type PoliticianService interface {
	CreatePolitician(req CreatePoliticianRequest) (*model.Politician, error)
	GetPolitician(id string) (*model.Politician, error)
	SearchPoliticians(keyword, party, region string, page, limit int) ([]*model.Politician, int64, error)
	UpdatePolitician(id string, req UpdatePoliticianRequest) (*model.Politician, error)
	DeletePolitician(id string) error
	UploadPortrait(id string, reader io.Reader, filename string) (*model.Politician, error)
	AddEvaluation(req AddEvaluationRequest) (*model.Evaluation, error)
	GetEvaluations(politicianID string) ([]model.Evaluation, error)
	GetRanking(limit int) ([]*model.Politician, error)
	RefreshRanking(politicianID string) error
}

type politicianService struct {
	politicianRepo repository.PoliticianRepository
	ratingRepo     repository.RatingRepository
	redis          *util.RedisClient
	cloudinary     *util.CloudinaryClient
}

type CreatePoliticianRequest struct {
	Name     string `json:"name" binding:"required"`
	Party    string `json:"party"`
	Region   string `json:"region"`
	Position string `json:"position"`
	Bio      string `json:"bio"`
}

type UpdatePoliticianRequest struct {
	Name     *string `json:"name"`
	Party    *string `json:"party"`
	Region   *string `json:"region"`
	Position *string `json:"position"`
	Bio      *string `json:"bio"`
}

type AddEvaluationRequest struct {
	// PoliticianID is taken from the URL path by the handler.
	PoliticianID string  `json:"politician_id"`
	Category     string  `json:"category" binding:"required"`
	Score        float64 `json:"score" binding:"required,gte=0,lte=100"`
	Summary      string  `json:"summary"`
	ModelName    string  `json:"model_name"`
}

func NewPoliticianService(
	politicianRepo repository.PoliticianRepository,
	ratingRepo repository.RatingRepository,
	redis *util.RedisClient,
	cloudinary *util.CloudinaryClient,
) PoliticianService {
	return &politicianService{
		politicianRepo: politicianRepo,
		ratingRepo:     ratingRepo,
		redis:          redis,
		cloudinary:     cloudinary,
	}
}

func (s *politicianService) CreatePolitician(req CreatePoliticianRequest) (*model.Politician, error) {
	politician := &model.Politician{
		Name:     req.Name,
		Party:    req.Party,
		Region:   req.Region,
		Position: req.Position,
		Bio:      req.Bio,
	}
	if err := s.politicianRepo.Create(politician); err != nil {
		return nil, storeErr(err)
	}
	return politician, nil
}

// GetPolitician returns a politician with the AI score and rating
// aggregates filled in.
func (s *politicianService) GetPolitician(id string) (*model.Politician, error) {
	politician, err := s.politicianRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoliticianNotFound
		}
		return nil, storeErr(err)
	}

	s.enrich(politician)
	return politician, nil
}

func (s *politicianService) SearchPoliticians(keyword, party, region string, page, limit int) ([]*model.Politician, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	politicians, total, err := s.politicianRepo.Search(keyword, party, region, limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}

	for _, p := range politicians {
		s.enrich(p)
	}
	return politicians, total, nil
}

func (s *politicianService) UpdatePolitician(id string, req UpdatePoliticianRequest) (*model.Politician, error) {
	politician, err := s.politicianRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoliticianNotFound
		}
		return nil, storeErr(err)
	}

	if req.Name != nil {
		politician.Name = *req.Name
	}
	if req.Party != nil {
		politician.Party = *req.Party
	}
	if req.Region != nil {
		politician.Region = *req.Region
	}
	if req.Position != nil {
		politician.Position = *req.Position
	}
	if req.Bio != nil {
		politician.Bio = *req.Bio
	}

	if err := s.politicianRepo.Update(politician); err != nil {
		return nil, storeErr(err)
	}
	return politician, nil
}

func (s *politicianService) DeletePolitician(id string) error {
	if _, err := s.politicianRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPoliticianNotFound
		}
		return storeErr(err)
	}
	if err := s.politicianRepo.Delete(id); err != nil {
		return storeErr(err)
	}
	if s.redis != nil {
		s.redis.ZRem(rankingKey, id)
	}
	return nil
}

// UploadPortrait stores a portrait image on Cloudinary and saves its URL.
func (s *politicianService) UploadPortrait(id string, reader io.Reader, filename string) (*model.Politician, error) {
	politician, err := s.politicianRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoliticianNotFound
		}
		return nil, storeErr(err)
	}

	if s.cloudinary == nil {
		return nil, errors.New("image uploads are not configured")
	}

	url, err := s.cloudinary.UploadPortraitFromReader(reader, filename)
	if err != nil {
		return nil, err
	}

	politician.PhotoURL = &url
	if err := s.politicianRepo.Update(politician); err != nil {
		return nil, storeErr(err)
	}
	return politician, nil
}

func (s *politicianService) AddEvaluation(req AddEvaluationRequest) (*model.Evaluation, error) {
	if _, err := s.politicianRepo.FindByID(req.PoliticianID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoliticianNotFound
		}
		return nil, storeErr(err)
	}

	evaluation := &model.Evaluation{
		PoliticianID: req.PoliticianID,
		Category:     req.Category,
		Score:        req.Score,
		Summary:      req.Summary,
		ModelName:    req.ModelName,
	}
	if err := s.politicianRepo.CreateEvaluation(evaluation); err != nil {
		return nil, storeErr(err)
	}

	if err := s.RefreshRanking(req.PoliticianID); err != nil {
		log.Printf("Failed to refresh ranking for politician %s: %v", req.PoliticianID, err)
	}
	return evaluation, nil
}

func (s *politicianService) GetEvaluations(politicianID string) ([]model.Evaluation, error) {
	evaluations, err := s.politicianRepo.FindEvaluationsByPoliticianID(politicianID)
	if err != nil {
		return nil, storeErr(err)
	}
	return evaluations, nil
}

// GetRanking reads the top politicians from the Redis sorted set and
// returns them in rank order. Falls back to an empty list when the
// ranking cache is unavailable.
func (s *politicianService) GetRanking(limit int) ([]*model.Politician, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if s.redis == nil {
		return []*model.Politician{}, nil
	}

	ids, err := s.redis.ZRevRange(rankingKey, 0, int64(limit-1))
	if err != nil {
		return nil, storeErr(err)
	}
	if len(ids) == 0 {
		return []*model.Politician{}, nil
	}

	politicians, err := s.politicianRepo.FindByIDs(ids)
	if err != nil {
		return nil, storeErr(err)
	}

	// FindByIDs does not preserve order; re-sort to match the ranking.
	byID := make(map[string]*model.Politician, len(politicians))
	for _, p := range politicians {
		byID[p.ID] = p
	}
	ordered := make([]*model.Politician, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			s.enrich(p)
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// RefreshRanking recomputes a politician's combined score and writes it
// to the ranking sorted set. The combined score weighs the AI score and
// the community average rating equally; the rating scale (1-5) is mapped
// onto 0-100 first.
func (s *politicianService) RefreshRanking(politicianID string) error {
	if s.redis == nil {
		return nil
	}

	aiScore := s.aiScore(politicianID)
	avg, count, err := s.ratingRepo.AverageByPoliticianID(politicianID)
	if err != nil {
		return err
	}

	combined := aiScore
	if count > 0 {
		combined = (aiScore + avg*20) / 2
	}
	return s.redis.ZAdd(rankingKey, combined, politicianID)
}

// enrich fills the virtual score fields on a politician.
func (s *politicianService) enrich(p *model.Politician) {
	p.AIScore = s.aiScore(p.ID)
	avg, count, err := s.ratingRepo.AverageByPoliticianID(p.ID)
	if err != nil {
		return
	}
	p.AvgRating = avg
	p.RatingCount = count
}

// aiScore averages all evaluation scores for a politician; zero when
// none exist.
func (s *politicianService) aiScore(politicianID string) float64 {
	evaluations, err := s.politicianRepo.FindEvaluationsByPoliticianID(politicianID)
	if err != nil || len(evaluations) == 0 {
		return 0
	}
	var sum float64
	for _, e := range evaluations {
		sum += e.Score
	}
	return sum / float64(len(evaluations))
}
