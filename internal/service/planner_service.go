package service

import (
	"closet/internal/entity"
	"context"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	// maxPlannerRangeDays 限制一次查询的天数。
	maxPlannerRangeDays = 366
)

// PlannerService 管理按日期规划的穿搭。日期按配置的时区划分自然日。
type PlannerService struct {
	notifier
	deps     Deps
	location *time.Location
}

// NewPlannerService 创建计划服务实例
func NewPlannerService(deps Deps, location *time.Location) *PlannerService {
	if location == nil {
		location = time.Local
	}
	return &PlannerService{
		deps:     deps.normalize(),
		location: location,
	}
}

// DayRange 返回 date（YYYY-MM-DD）所在自然日的 [start, end)。
func (s *PlannerService) DayRange(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), s.location)
	if err != nil {
		return time.Time{}, time.Time{}, invalidInput("date must be YYYY-MM-DD")
	}
	return day, day.AddDate(0, 0, 1), nil
}

// Slots 返回查询条件内的计划。date 优先；否则使用闭区间 from..to；都为空时返回今天。
func (s *PlannerService) Slots(ctx context.Context, ownerID uint, params entity.CalendarSlotQueryParams) ([]entity.DbCalendarSlot, error) {
	if ownerID == 0 {
		return nil, invalidInput("owner is required")
	}

	var from, to time.Time
	switch {
	case strings.TrimSpace(params.Date) != "":
		start, end, err := s.DayRange(params.Date)
		if err != nil {
			return nil, err
		}
		from, to = start, end
	case strings.TrimSpace(params.From) != "" || strings.TrimSpace(params.To) != "":
		if strings.TrimSpace(params.From) == "" || strings.TrimSpace(params.To) == "" {
			return nil, invalidInput("from and to must be given together")
		}
		start, _, err := s.DayRange(params.From)
		if err != nil {
			return nil, err
		}
		_, end, err := s.DayRange(params.To)
		if err != nil {
			return nil, err
		}
		if !end.After(start) {
			return nil, invalidInput("to must not be before from")
		}
		if end.Sub(start) > maxPlannerRangeDays*24*time.Hour {
			return nil, invalidInput("range must not exceed %d days", maxPlannerRangeDays)
		}
		from, to = start, end
	default:
		start, end, err := s.DayRange(s.deps.Clock().In(s.location).Format(dateLayout))
		if err != nil {
			return nil, err
		}
		from, to = start, end
	}

	slots, err := s.deps.Repo.ListCalendarSlots(ctx, entity.CalendarSlotQuery{
		OwnerID: ownerID,
		From:    from.UTC(),
		To:      to.UTC(),
	})
	if err != nil {
		return nil, s.deps.readFailed("list_calendar_slots", ownerID, err)
	}
	return slots, nil
}

// Get 返回单个计划。
func (s *PlannerService) Get(ctx context.Context, ownerID, id uint) (*entity.DbCalendarSlot, error) {
	if id == 0 {
		return nil, invalidInput("calendar slot id is required")
	}
	slot, err := s.deps.Repo.GetCalendarSlot(ctx, ownerID, id)
	if err != nil {
		return nil, s.deps.readFailed("get_calendar_slot", ownerID, err)
	}
	return slot, nil
}

// Create 新建一个计划并关联衣物。
func (s *PlannerService) Create(ctx context.Context, ownerID uint, req entity.CalendarSlotCreateRequest) (*entity.DbCalendarSlot, error) {
	if ownerID == 0 {
		return nil, invalidInput("owner is required")
	}
	if req.Date.IsZero() {
		return nil, invalidInput("date is required")
	}
	occasion := strings.TrimSpace(req.Occasion)
	if occasion == "" {
		return nil, invalidInput("occasion is required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	slot := &entity.DbCalendarSlot{
		OwnerID:  ownerID,
		Date:     req.Date.UTC(),
		Occasion: occasion,
		Notes:    strings.TrimSpace(req.Notes),
	}
	if err := s.deps.Repo.CreateCalendarSlot(ctx, slot, req.GarmentIDs); err != nil {
		return nil, s.deps.writeFailed("create_calendar_slot", ownerID, err)
	}
	s.notify(ownerID, "planner_saved", slot.ID)
	return slot, nil
}

// Update 修改计划的日期、场合或备注。
func (s *PlannerService) Update(ctx context.Context, ownerID, id uint, req entity.CalendarSlotUpdateRequest) (*entity.DbCalendarSlot, error) {
	if id == 0 {
		return nil, invalidInput("calendar slot id is required")
	}

	var updates entity.CalendarSlotUpdates
	if req.Date != nil {
		if req.Date.IsZero() {
			return nil, invalidInput("date must not be empty")
		}
		date := req.Date.UTC()
		updates.Date = &date
	}
	if req.Occasion != nil {
		occasion := strings.TrimSpace(*req.Occasion)
		if occasion == "" {
			return nil, invalidInput("occasion must not be empty")
		}
		updates.Occasion = &occasion
	}
	if req.Notes != nil {
		notes := strings.TrimSpace(*req.Notes)
		updates.Notes = &notes
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	if !updates.IsEmpty() {
		if err := s.deps.Repo.UpdateCalendarSlot(ctx, ownerID, id, updates); err != nil {
			return nil, s.deps.writeFailed("update_calendar_slot", ownerID, err)
		}
		s.notify(ownerID, "planner_updated", id)
	}
	return s.Get(ctx, ownerID, id)
}

// AssignGarment 把衣物加入计划，重复加入不报错。
func (s *PlannerService) AssignGarment(ctx context.Context, ownerID, slotID, garmentID uint) (*entity.DbCalendarSlot, error) {
	if slotID == 0 || garmentID == 0 {
		return nil, invalidInput("calendar slot id and garment id are required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	if err := s.deps.Repo.AddGarmentToSlot(ctx, ownerID, slotID, garmentID); err != nil {
		return nil, s.deps.writeFailed("assign_garment", ownerID, err)
	}
	s.notify(ownerID, "planner_updated", slotID)
	return s.Get(ctx, ownerID, slotID)
}

// UnassignGarment 把衣物移出计划。
func (s *PlannerService) UnassignGarment(ctx context.Context, ownerID, slotID, garmentID uint) (*entity.DbCalendarSlot, error) {
	if slotID == 0 || garmentID == 0 {
		return nil, invalidInput("calendar slot id and garment id are required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	if err := s.deps.Repo.RemoveGarmentFromSlot(ctx, ownerID, slotID, garmentID); err != nil {
		return nil, s.deps.writeFailed("unassign_garment", ownerID, err)
	}
	s.notify(ownerID, "planner_updated", slotID)
	return s.Get(ctx, ownerID, slotID)
}

// Delete 删除计划。
func (s *PlannerService) Delete(ctx context.Context, ownerID, id uint) error {
	if id == 0 {
		return invalidInput("calendar slot id is required")
	}

	unlock := s.deps.Locks.Lock(ownerID)
	defer unlock()

	if err := s.deps.Repo.DeleteCalendarSlot(ctx, ownerID, id); err != nil {
		return s.deps.writeFailed("delete_calendar_slot", ownerID, err)
	}
	s.notify(ownerID, "planner_deleted", id)
	return nil
}
