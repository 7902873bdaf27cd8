package services

import (
	"github.com/Dosada05/style-duel/brackets"
	"github.com/Dosada05/style-duel/models"
)

// ResultPublisher получает финализированный итог турнира для downstream
// потребителей (модель предпочтений, live-уведомления). Публикация
// выполняется после коммита и никогда не влияет на исход вызова.
type ResultPublisher interface {
	PublishResult(result *models.TournamentResult, champion *models.Image)
}

type hubResultPublisher struct {
	hub *brackets.Hub
}

// NewHubResultPublisher публикует завершения турниров в персональную
// WebSocket-комнату пользователя.
func NewHubResultPublisher(hub *brackets.Hub) ResultPublisher {
	return &hubResultPublisher{hub: hub}
}

func (p *hubResultPublisher) PublishResult(result *models.TournamentResult, champion *models.Image) {
	room := brackets.UserRoom(result.UserID)
	p.hub.BroadcastToRoom(room, brackets.EventMessage{
		Type: "TOURNAMENT_COMPLETED",
		Payload: map[string]interface{}{
			"result":   result,
			"champion": champion,
		},
		RoomID: room,
	})
}
