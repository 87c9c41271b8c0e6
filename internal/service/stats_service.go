package service

import (
	"closet/internal/entity"
	"closet/internal/wardrobe"
	"context"
	"errors"
	"time"
)

// StatsOptions 控制统计口径。
type StatsOptions struct {
	Location     *time.Location
	UnwornPeriod time.Duration
	ColorWindow  int
	RecentLimit  int
}

// MoodStats 汇总日记中的心情分布与按月分组。
type MoodStats struct {
	Distribution map[string]int
	Months       []wardrobe.MonthEntries
}

// StatsService 在衣橱与日记快照上计算统计数据。
//
// 每个方法返回的 bool 表示结果是否基于缓存快照；此时 error 同样非空。
type StatsService struct {
	deps   Deps
	closet *ClosetService
	diary  *DiaryService
	opts   StatsOptions
}

// NewStatsService 创建统计服务实例
func NewStatsService(deps Deps, closet *ClosetService, diary *DiaryService, opts StatsOptions) *StatsService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &StatsService{
		deps:   deps.normalize(),
		closet: closet,
		diary:  diary,
		opts:   opts,
	}
}

// Overview 计算全部统计。
func (s *StatsService) Overview(ctx context.Context, ownerID uint) (wardrobe.Overview, bool, error) {
	garments, entries, stale, err := s.load(ctx, ownerID, true, true)
	if err != nil && !stale {
		return wardrobe.BuildOverview(nil, nil, s.overviewOptions()), false, err
	}
	return wardrobe.BuildOverview(garments, entries, s.overviewOptions()), stale, err
}

// Unworn 返回超过 UnwornPeriod 未穿的衣物。
func (s *StatsService) Unworn(ctx context.Context, ownerID uint) ([]entity.DbGarment, bool, error) {
	garments, _, stale, err := s.load(ctx, ownerID, true, false)
	if err != nil && !stale {
		return []entity.DbGarment{}, false, err
	}
	return wardrobe.UnwornItems(garments, s.deps.now(), s.opts.UnwornPeriod), stale, err
}

// MonthlyFrequency 返回按最近穿着月份分组的衣物数量，最新月份在前。
func (s *StatsService) MonthlyFrequency(ctx context.Context, ownerID uint) ([]wardrobe.MonthCount, bool, error) {
	garments, _, stale, err := s.load(ctx, ownerID, true, false)
	if err != nil && !stale {
		return []wardrobe.MonthCount{}, false, err
	}
	return wardrobe.WearFrequencyByMonth(garments, s.opts.Location), stale, err
}

// ColorCombinations 返回最近日记中最常见的颜色组合。
func (s *StatsService) ColorCombinations(ctx context.Context, ownerID uint) ([]wardrobe.ColorCombination, bool, error) {
	_, entries, stale, err := s.load(ctx, ownerID, false, true)
	if err != nil && !stale {
		return []wardrobe.ColorCombination{}, false, err
	}
	return wardrobe.PopularColorCombinations(entries, s.opts.ColorWindow), stale, err
}

// Moods 返回心情分布与按月分组的日记。
func (s *StatsService) Moods(ctx context.Context, ownerID uint) (MoodStats, bool, error) {
	_, entries, stale, err := s.load(ctx, ownerID, false, true)
	if err != nil && !stale {
		return MoodStats{Distribution: map[string]int{}, Months: []wardrobe.MonthEntries{}}, false, err
	}
	return MoodStats{
		Distribution: wardrobe.MoodDistribution(entries),
		Months:       wardrobe.EntriesByMonth(entries, s.opts.Location),
	}, stale, err
}

// load 读取所需的快照。任一读取失败且无缓存时 stale 为 false 且 err 非空。
func (s *StatsService) load(ctx context.Context, ownerID uint, needGarments, needEntries bool) ([]entity.DbGarment, []entity.DbOutfitEntry, bool, error) {
	var (
		garments []entity.DbGarment
		entries  []entity.DbOutfitEntry
		errs     []error
		stale    bool
		missing  bool
	)

	if needGarments {
		snapshot, err := s.closet.Snapshot(ctx, ownerID)
		if err != nil {
			errs = append(errs, err)
			if !snapshot.Stale {
				missing = true
			}
		}
		stale = stale || snapshot.Stale
		garments = snapshot.Garments
	}
	if needEntries {
		history, err := s.diary.History(ctx, ownerID)
		if err != nil {
			errs = append(errs, err)
			if !history.Stale {
				missing = true
			}
		}
		stale = stale || history.Stale
		entries = history.Entries
	}

	if missing {
		stale = false
	}
	return garments, entries, stale, errors.Join(errs...)
}

func (s *StatsService) overviewOptions() wardrobe.OverviewOptions {
	return wardrobe.OverviewOptions{
		Now:          s.deps.now(),
		Location:     s.opts.Location,
		UnwornPeriod: s.opts.UnwornPeriod,
		ColorWindow:  s.opts.ColorWindow,
		RecentLimit:  s.opts.RecentLimit,
	}
}
