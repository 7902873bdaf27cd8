package models

import "time"

// Image — запись каталога изображений. Движок турнира читает только
// approved+active записи; загрузкой и модерацией занимается внешний сервис.
type Image struct {
	ID         int64     `json:"id" db:"id"`
	Category   string    `json:"category" db:"category"`
	Title      *string   `json:"title,omitempty" db:"title"`
	StorageKey *string   `json:"-" db:"storage_key"`
	URL        *string   `json:"url,omitempty" db:"-"`
	Active     bool      `json:"active" db:"active"`
	Approved   bool      `json:"approved" db:"approved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CategorySummary — категория с количеством доступных изображений,
// отдаётся фронтенду для выбора турнира.
type CategorySummary struct {
	Category   string `json:"category"`
	ImageCount int    `json:"image_count"`
}
