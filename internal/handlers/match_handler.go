package handlers

import (
	"strconv"
	"time"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/internal/services"
	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
)

type requestResponse struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	BlockedBy  uint      `json:"blockedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toRequestResponse(r *models.RelationshipRequest) requestResponse {
	return requestResponse{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Type:       r.Type,
		Status:     r.Status,
		BlockedBy:  r.BlockedBy,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type receiverBody struct {
	ReceiverID uint `json:"receiverId" binding:"required"`
}

type targetBody struct {
	TargetID uint `json:"targetId" binding:"required"`
}

type actionBody struct {
	Action string `json:"action" binding:"required"`
}

// GetFeed GET /matches/feed
func (h *HandlerManager) GetFeed(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	page, limit := pageQuery(c)
	feed, err := h.MatchSvc.GetFeed(c.Request.Context(), userID, page, limit)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, feed)
}

// SendInterest POST /matches/interest
func (h *HandlerManager) SendInterest(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var body receiverBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "receiverId is required")
		return
	}

	req, err := h.MatchSvc.SendInterest(c.Request.Context(), userID, body.ReceiverID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Created(c, "interest sent", toRequestResponse(req))
}

// SendChatRequest POST /matches/chat-request
func (h *HandlerManager) SendChatRequest(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var body receiverBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "receiverId is required")
		return
	}

	req, err := h.MatchSvc.SendChatRequest(c.Request.Context(), userID, body.ReceiverID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Created(c, "chat request sent", toRequestResponse(req))
}

// RespondToRequest PATCH /matches/requests/:requestId
func (h *HandlerManager) RespondToRequest(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "requestId")
	if !ok {
		return
	}

	var body actionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "action is required")
		return
	}

	req, err := h.MatchSvc.RespondToRequest(c.Request.Context(), userID, requestID, body.Action)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "request "+req.Status, toRequestResponse(req))
}

// CancelRequest DELETE /matches/requests/:requestId
func (h *HandlerManager) CancelRequest(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "requestId")
	if !ok {
		return
	}

	req, err := h.MatchSvc.CancelRequest(c.Request.Context(), userID, requestID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "request cancelled", toRequestResponse(req))
}

// BlockUser POST /matches/block
func (h *HandlerManager) BlockUser(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var body targetBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "targetId is required")
		return
	}

	if _, err := h.MatchSvc.BlockUser(c.Request.Context(), userID, body.TargetID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "user blocked", nil)
}

// UnblockUser DELETE /matches/block/:targetId
func (h *HandlerManager) UnblockUser(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "targetId")
	if !ok {
		return
	}

	if err := h.MatchSvc.UnblockUser(c.Request.Context(), userID, targetID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "user unblocked", nil)
}

// ViewProfile GET /matches/view/:id
func (h *HandlerManager) ViewProfile(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	targetID, ok := idParam(c, "id")
	if !ok {
		return
	}

	profile, err := h.MatchSvc.ViewProfile(c.Request.Context(), userID, targetID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, profile)
}

// SearchProfiles GET /matches/filter
func (h *HandlerManager) SearchProfiles(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	page, limit := pageQuery(c)
	filter := services.SearchFilter{
		Religion:     c.Query("religion"),
		Caste:        c.Query("caste"),
		MotherTongue: c.Query("motherTongue"),
		City:         c.Query("city"),
	}

	results, err := h.MatchSvc.SearchProfiles(c.Request.Context(), userID, filter, page, limit)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, results)
}

// GetPendingRequests GET /matches/requests/pending
func (h *HandlerManager) GetPendingRequests(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	reqs, err := h.MatchSvc.GetPendingRequests(c.Request.Context(), userID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"requests": reqs, "count": len(reqs)})
}

// GetDashboardCounts GET /matches/dashboard-stats
func (h *HandlerManager) GetDashboardCounts(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	counts, err := h.MatchSvc.GetDashboardCounts(c.Request.Context(), userID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, counts)
}

// ListRequests GET /matches/dashboard-stats/requests?type=sent|received&status=...
func (h *HandlerManager) ListRequests(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	onlyChat, _ := strconv.ParseBool(c.DefaultQuery("onlyChat", "false"))
	reqs, err := h.MatchSvc.ListRequests(c.Request.Context(), userID, c.Query("type"), c.Query("status"), onlyChat)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"requests": reqs, "count": len(reqs)})
}

// CheckChatAccess GET /matches/chat-access/:id
func (h *HandlerManager) CheckChatAccess(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	otherID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.MatchSvc.CheckChatAccess(c.Request.Context(), userID, otherID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"allowed": true})
}
