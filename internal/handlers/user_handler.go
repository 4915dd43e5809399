package handlers

import (
	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
)

type telegramBody struct {
	ChatID int64 `json:"chatId" binding:"required"`
}

// LinkTelegram PUT /me/telegram stores the chat that receives activity alerts
func (h *HandlerManager) LinkTelegram(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	var body telegramBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequest(c, "chatId is required")
		return
	}

	if err := h.Users.LinkTelegramChat(c.Request.Context(), userID, body.ChatID); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "telegram linked", nil)
}

// UnlinkTelegram DELETE /me/telegram stops Telegram alerts
func (h *HandlerManager) UnlinkTelegram(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	if err := h.Users.LinkTelegramChat(c.Request.Context(), userID, 0); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "telegram unlinked", nil)
}
