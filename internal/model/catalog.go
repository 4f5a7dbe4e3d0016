package model

import "github.com/google/uuid"

// TextTrack is a subtitle or caption file.
type TextTrack struct {
	Language string `json:"language"`
	URL      string `json:"url" validate:"omitempty,url"`
}

// VideoSource is an embeddable stream attached to a movie or an episode.
type VideoSource struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OwnerID   uuid.UUID   `gorm:"type:uuid;index" json:"-"`
	OwnerType string      `gorm:"type:varchar(20);index" json:"-"`
	Platform  string      `gorm:"type:varchar(20)" json:"platform" validate:"omitempty,oneof=youtube dailymotion vimeo twitch facebook custom"`
	EmbedType string      `gorm:"type:varchar(10)" json:"embedType" validate:"omitempty,oneof=iframe direct"`
	Quality   string      `gorm:"type:varchar(10)" json:"videoQuality" validate:"omitempty,oneof=144p 280p 360p 480p 720p 1080p 1440p 4k 8k auto"`
	Link      string      `gorm:"type:varchar(1024)" json:"videoLink" validate:"required"`
	Subtitles []TextTrack `gorm:"serializer:json" json:"subtitles,omitempty" validate:"dive"`
	Captions  []TextTrack `gorm:"serializer:json" json:"captions,omitempty" validate:"dive"`
}

// Genre is one of a fixed set of options.
type Genre struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Value string `gorm:"type:varchar(50);uniqueIndex;not null" json:"value"`
	Label string `gorm:"type:varchar(100)" json:"label"`
}

// DefaultGenres defines the genre options seeded at startup
var DefaultGenres = []Genre{
	{Value: "action", Label: "Action"},
	{Value: "adventure", Label: "Adventure"},
	{Value: "comedy", Label: "Comedy"},
	{Value: "drama", Label: "Drama"},
	{Value: "fantasy", Label: "Fantasy"},
	{Value: "historical", Label: "Historical"},
	{Value: "horror", Label: "Horror"},
	{Value: "mystery", Label: "Mystery"},
	{Value: "romance", Label: "Romance"},
	{Value: "science-fiction", Label: "Science Fiction"},
	{Value: "thriller", Label: "Thriller"},
	{Value: "western", Label: "Western"},
}

// Cast is a cast member with their credits.
type Cast struct {
	BaseModel
	Name     string      `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Bio      string      `gorm:"type:text" json:"bio,omitempty"`
	PhotoURL string      `gorm:"type:varchar(512)" json:"photo,omitempty"`
	Credits  []CastCredit `gorm:"foreignKey:CastID;constraint:OnDelete:CASCADE" json:"credits,omitempty" validate:"dive"`
}

// CastCredit is a role in exactly one movie or one series.
type CastCredit struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	CastID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"castId"`
	MovieID  *uuid.UUID `gorm:"type:uuid;index" json:"movieId,omitempty" validate:"required_without=SeriesID,excluded_with=SeriesID"`
	SeriesID *uuid.UUID `gorm:"type:uuid;index" json:"seriesId,omitempty" validate:"required_without=MovieID"`
	Role     string     `gorm:"type:varchar(255);not null" json:"role" validate:"required"`
}
