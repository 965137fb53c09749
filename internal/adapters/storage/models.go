package storage

import "time"

// SessionModel is the GORM model for finished sessions
type SessionModel struct {
	CreatedAt time.Time
	EndedAt   time.Time
	GameID    string    `gorm:"not null;index:idx_game_id"`
	GameName  string    `gorm:"not null;default:''"`
	ID        string    `gorm:"primaryKey"`
	Phase     string    `gorm:"not null"`
	StartedAt time.Time `gorm:"not null;index:idx_started_at"`
	Success   bool      `gorm:"not null;default:false"`
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string { return "sessions" }

// SessionStepModel is the GORM model for per-application step outcomes
type SessionStepModel struct {
	Action    string `gorm:"not null"`
	AppID     string `gorm:"not null"`
	CreatedAt time.Time
	Detail    string `gorm:"not null;default:''"`
	Error     string `gorm:"not null;default:''"`
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Position  int    `gorm:"not null;default:0"`
	SessionID string `gorm:"not null;index:idx_session_id"`
	Stage     string `gorm:"not null;default:''"`
}

// TableName specifies the table name for GORM
func (SessionStepModel) TableName() string { return "session_steps" }
