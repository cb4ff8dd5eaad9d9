package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FileChunk is one ordered, overlapping slice of an indexed document.
type FileChunk struct {
	ID         uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID                    `gorm:"type:uuid;not null;index:idx_chunk_file,priority:1" json:"user_id"`
	FileID     string                       `gorm:"column:file_id;not null;index:idx_chunk_file,priority:2" json:"file_id"`
	FileName   string                       `gorm:"column:file_name" json:"file_name,omitempty"`
	ChunkIndex int                          `gorm:"column:chunk_index;not null" json:"chunk_index"`
	Content    string                       `gorm:"column:content;type:text;not null" json:"content"`
	Embedding  datatypes.JSONSlice[float32] `gorm:"column:embedding" json:"embedding"`
	CreatedAt  time.Time                    `json:"created_at"`
}

func (FileChunk) TableName() string { return "file_chunks" }

func (c *FileChunk) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
