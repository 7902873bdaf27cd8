package services

import (
	"math"

	"github.com/Dosada05/style-duel/models"
	"github.com/Dosada05/style-duel/storage"
)

// Progress — снимок прогресса сессии. Чистая функция от счётчиков,
// никогда не хранится в БД.
type Progress struct {
	TotalMatchups     int `json:"total_matchups"`
	CompletedMatchups int `json:"completed_matchups"`
	Percentage        int `json:"percentage"`
}

func progressFor(tournamentSize, remainingCount int) Progress {
	total := tournamentSize - 1
	completed := tournamentSize - remainingCount
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return Progress{
		TotalMatchups:     total,
		CompletedMatchups: completed,
		Percentage:        percentage,
	}
}

// totalRoundsFor — log2(size) для степени двойки.
func totalRoundsFor(tournamentSize int) int {
	rounds := 0
	for n := tournamentSize; n > 1; n /= 2 {
		rounds++
	}
	return rounds
}

func populateImageURLFunc(img *models.Image, uploader storage.FileUploader) {
	if img != nil && img.StorageKey != nil && *img.StorageKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*img.StorageKey)
		if url != "" {
			img.URL = &url
		}
	}
}
