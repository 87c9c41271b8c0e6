package api

import (
	"closet/internal/entity"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListPlannerSlots 按 date 或 from/to 查询计划，默认今天。
func (h *HTTPHandler) ListPlannerSlots(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var params entity.CalendarSlotQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	slots, err := h.planner.Slots(ctx, user.ID, params)
	if err != nil {
		ServiceError(c, err, ErrCodeSlotNotFound)
		return
	}
	items := make([]entity.CalendarSlot, 0, len(slots))
	for _, slot := range slots {
		items = append(items, h.makeCalendarSlot(slot))
	}
	c.JSON(http.StatusOK, entity.CalendarSlotListResponse{Slots: items})
}

func (h *HTTPHandler) GetPlannerSlot(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	slot, err := h.planner.Get(ctx, user.ID, id)
	if err != nil {
		ServiceError(c, err, ErrCodeSlotNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.CalendarSlotDetailResponse{Slot: h.makeCalendarSlot(*slot)})
}

func (h *HTTPHandler) CreatePlannerSlot(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.CalendarSlotCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	slot, err := h.planner.Create(ctx, user.ID, req)
	if err != nil {
		ServiceError(c, err, ErrCodeGarmentNotFound)
		return
	}
	c.JSON(http.StatusCreated, entity.CalendarSlotDetailResponse{Slot: h.makeCalendarSlot(*slot)})
}

func (h *HTTPHandler) UpdatePlannerSlot(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.CalendarSlotUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	slot, err := h.planner.Update(ctx, user.ID, id, req)
	if err != nil {
		ServiceError(c, err, ErrCodeSlotNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.CalendarSlotDetailResponse{Slot: h.makeCalendarSlot(*slot)})
}

func (h *HTTPHandler) DeletePlannerSlot(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.planner.Delete(ctx, user.ID, id); err != nil {
		ServiceError(c, err, ErrCodeSlotNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) AssignPlannerGarment(c *gin.Context) {
	h.changePlannerGarment(c, true)
}

func (h *HTTPHandler) UnassignPlannerGarment(c *gin.Context) {
	h.changePlannerGarment(c, false)
}

func (h *HTTPHandler) changePlannerGarment(c *gin.Context, assign bool) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}
	slotID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	garmentID, ok := parseIDParam(c, "garment_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	var (
		slot *entity.DbCalendarSlot
		err  error
	)
	if assign {
		slot, err = h.planner.AssignGarment(ctx, user.ID, slotID, garmentID)
	} else {
		slot, err = h.planner.UnassignGarment(ctx, user.ID, slotID, garmentID)
	}
	if err != nil {
		ServiceError(c, err, ErrCodeNotFound)
		return
	}
	c.JSON(http.StatusOK, entity.CalendarSlotDetailResponse{Slot: h.makeCalendarSlot(*slot)})
}
