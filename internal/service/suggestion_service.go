package service

import (
	"closet/internal/entity"
	"closet/internal/wardrobe"
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Suggestion 是一次穿搭推荐的结果。
type Suggestion struct {
	Occasion string
	Mood     string
	Garments []entity.DbGarment
	Stale    bool
}

// SuggestionService 在用户衣橱快照上运行推荐引擎。
type SuggestionService struct {
	deps        Deps
	closet      *ClosetService
	recommender *wardrobe.Recommender
	location    *time.Location
}

// NewSuggestionService 创建推荐服务实例
func NewSuggestionService(deps Deps, closet *ClosetService, recommender *wardrobe.Recommender, location *time.Location) *SuggestionService {
	if location == nil {
		location = time.Local
	}
	return &SuggestionService{
		deps:        deps.normalize(),
		closet:      closet,
		recommender: recommender,
		location:    location,
	}
}

// Tables 返回推荐引擎实际使用的查找表
func (s *SuggestionService) Tables() wardrobe.Tables {
	return s.recommender.Tables()
}

// Suggest 为用户组合一套穿搭。auto 为 true 且未指定场合时，按当前时段推断场合。
//
// 衣橱读取失败但有缓存时，基于缓存推荐并同时返回错误（Stale=true）；没有缓存时只返回错误。
func (s *SuggestionService) Suggest(ctx context.Context, ownerID uint, query entity.SuggestionQuery) (Suggestion, error) {
	occasion := strings.TrimSpace(query.Occasion)
	mood := strings.TrimSpace(query.Mood)
	if occasion == "" && query.Auto {
		occasion = wardrobe.OccasionForHour(s.deps.Clock().In(s.location).Hour())
	}

	snapshot, err := s.closet.Snapshot(ctx, ownerID)
	if err != nil && !snapshot.Stale {
		return Suggestion{Occasion: occasion, Mood: mood, Garments: []entity.DbGarment{}}, err
	}

	req := wardrobe.SuggestRequest{}
	if occasion != "" {
		req.Occasion = &occasion
	}
	if mood != "" {
		req.Mood = &mood
	}
	garments := s.recommender.Suggest(req, snapshot.Garments)
	s.deps.Recorder.RecordSuggestion(len(garments))

	logrus.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"occasion": occasion,
		"mood":     mood,
		"pool":     len(snapshot.Garments),
		"picked":   len(garments),
		"stale":    snapshot.Stale,
	}).Debug("outfit suggested")

	return Suggestion{
		Occasion: occasion,
		Mood:     mood,
		Garments: garments,
		Stale:    snapshot.Stale,
	}, err
}
