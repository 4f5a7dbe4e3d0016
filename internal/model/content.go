package model

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the closed set of publishable content collections.
type Kind string

const (
	KindMovie   Kind = "movies"
	KindSeries  Kind = "series"
	KindEpisode Kind = "episodes"
	KindPost    Kind = "posts"
)

// Kinds lists every content kind.
var Kinds = []Kind{KindMovie, KindSeries, KindEpisode, KindPost}

func (k Kind) String() string { return string(k) }

// Status is the document lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// SEO holds the meta tab of a document.
type SEO struct {
	Title       string `gorm:"type:varchar(255)" json:"title,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Image       string `gorm:"type:varchar(512)" json:"image,omitempty"`
}

// Publication is embedded in every content kind.
type Publication struct {
	Status      Status     `gorm:"column:status;type:varchar(20);not null;default:draft;index" json:"_status" validate:"omitempty,oneof=draft published"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt,omitempty"`
	Slug        string     `gorm:"type:varchar(255);uniqueIndex" json:"slug" validate:"omitempty,slug"`
	SlugLock    bool       `json:"slugLock"`
	Meta        SEO        `gorm:"embedded;embeddedPrefix:meta_" json:"meta"`
	Views       int64      `gorm:"default:0" json:"views"`
}

// IsPublished reports whether the document is publicly visible.
func (p *Publication) IsPublished() bool {
	return p.Status == StatusPublished
}

// Stamp fills PublishedAt the first time a document is saved as published.
func (p *Publication) Stamp(now time.Time) {
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Status == StatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}

// Document is implemented by pointers to every content kind.
type Document interface {
	Kind() Kind
	GetID() uuid.UUID
	Pub() *Publication
	SlugSource() string
	// RevalidatePath is the frontend path that renders the document.
	RevalidatePath() string
	Audit() *BaseModel
}

// RelatedKinds lists the kinds a document of kind owner may link to as
// related content. Posts carry no links.
func RelatedKinds(owner Kind) []Kind {
	switch owner {
	case KindMovie, KindSeries, KindEpisode:
		return []Kind{KindMovie, KindSeries, KindPost}
	}
	return nil
}

// RelatedField names the struct field holding links to target documents.
func RelatedField(target Kind) string {
	switch target {
	case KindMovie:
		return "RelatedMovies"
	case KindSeries:
		return "RelatedSeries"
	case KindPost:
		return "RelatedPosts"
	}
	return ""
}

// RelatedTable is the join table from owner documents to target documents,
// keyed by owner_id and target_id.
func RelatedTable(owner, target Kind) string {
	return string(owner) + "_related_" + string(target)
}

// Linked is implemented by documents that carry related content.
type Linked interface {
	RelatedIDs(target Kind) []uuid.UUID
}

// related gathers the link fields of a movie, series or episode. Only the
// ids of submitted items are read on write.
type related struct {
	movies []Movie
	series []Series
	posts  []Post
}

func (r related) ids(target Kind) []uuid.UUID {
	var out []uuid.UUID
	switch target {
	case KindMovie:
		for _, m := range r.movies {
			out = append(out, m.ID)
		}
	case KindSeries:
		for _, s := range r.series {
			out = append(out, s.ID)
		}
	case KindPost:
		for _, p := range r.posts {
			out = append(out, p.ID)
		}
	}
	return out
}

// Movie is a standalone feature.
type Movie struct {
	BaseModel
	Title string `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Type  string `gorm:"type:varchar(20);default:movie" json:"type"`
	Publication
	Genres []Genre       `gorm:"many2many:movie_genres;" json:"genres,omitempty" validate:"-"`
	Videos []VideoSource `gorm:"polymorphic:Owner;polymorphicValue:movies" json:"videos,omitempty" validate:"dive"`
	Cast   []CastCredit  `gorm:"foreignKey:MovieID" json:"cast,omitempty" validate:"-"`

	RelatedMovies []Movie  `gorm:"many2many:movies_related_movies;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedMovies,omitempty" validate:"-"`
	RelatedSeries []Series `gorm:"many2many:movies_related_series;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedSeries,omitempty" validate:"-"`
	RelatedPosts  []Post   `gorm:"many2many:movies_related_posts;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedPosts,omitempty" validate:"-"`
}

func (m *Movie) Kind() Kind { return KindMovie }
func (m *Movie) GetID() uuid.UUID { return m.ID }
func (m *Movie) Pub() *Publication { return &m.Publication }
func (m *Movie) SlugSource() string { return m.Title }
func (m *Movie) RevalidatePath() string { return "/movies/" + m.Slug }
func (m *Movie) Audit() *BaseModel { return &m.BaseModel }
func (m *Movie) RelatedIDs(target Kind) []uuid.UUID {
	return related{m.RelatedMovies, m.RelatedSeries, m.RelatedPosts}.ids(target)
}

// Series groups seasons of episodes.
type Series struct {
	BaseModel
	Title string `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Publication
	Genres  []Genre  `gorm:"many2many:series_genres;" json:"genres,omitempty" validate:"-"`
	Seasons []Season `gorm:"foreignKey:SeriesID" json:"seasons,omitempty" validate:"dive"`

	RelatedMovies []Movie  `gorm:"many2many:series_related_movies;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedMovies,omitempty" validate:"-"`
	RelatedSeries []Series `gorm:"many2many:series_related_series;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedSeries,omitempty" validate:"-"`
	RelatedPosts  []Post   `gorm:"many2many:series_related_posts;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedPosts,omitempty" validate:"-"`
}

func (s *Series) Kind() Kind { return KindSeries }
func (s *Series) GetID() uuid.UUID { return s.ID }
func (s *Series) Pub() *Publication { return &s.Publication }
func (s *Series) SlugSource() string { return s.Title }
func (s *Series) RevalidatePath() string { return "/series/" + s.Slug }
func (s *Series) Audit() *BaseModel { return &s.BaseModel }
func (s *Series) RelatedIDs(target Kind) []uuid.UUID {
	return related{s.RelatedMovies, s.RelatedSeries, s.RelatedPosts}.ids(target)
}

// Season is one block of a series.
type Season struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SeriesID    uuid.UUID `gorm:"type:uuid;not null;index" json:"seriesId"`
	Number      int       `gorm:"not null;default:1" json:"number" validate:"gte=0"`
	Title       string    `gorm:"type:varchar(255)" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Episodes    []Episode `gorm:"foreignKey:SeasonID" json:"episodes,omitempty" validate:"-"`
}

// Episode belongs to a series and optionally to one of its seasons.
type Episode struct {
	BaseModel
	Title       string     `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Description string     `gorm:"type:text" json:"descr,omitempty"`
	SeriesID    *uuid.UUID `gorm:"type:uuid;index" json:"seriesId,omitempty"`
	SeasonID    *uint      `gorm:"index" json:"seasonId,omitempty"`
	Type        string     `gorm:"type:varchar(20);default:series" json:"type"`
	Publication
	Videos []VideoSource `gorm:"polymorphic:Owner;polymorphicValue:episodes" json:"videos,omitempty" validate:"dive"`

	RelatedMovies []Movie  `gorm:"many2many:episodes_related_movies;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedMovies,omitempty" validate:"-"`
	RelatedSeries []Series `gorm:"many2many:episodes_related_series;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedSeries,omitempty" validate:"-"`
	RelatedPosts  []Post   `gorm:"many2many:episodes_related_posts;joinForeignKey:OwnerID;joinReferences:TargetID" json:"relatedPosts,omitempty" validate:"-"`
}

func (e *Episode) Kind() Kind { return KindEpisode }
func (e *Episode) GetID() uuid.UUID { return e.ID }
func (e *Episode) Pub() *Publication { return &e.Publication }
func (e *Episode) SlugSource() string { return e.Title }

// Episodes are watched by id, not slug.
func (e *Episode) RevalidatePath() string { return "/watch/" + e.ID.String() }
func (e *Episode) Audit() *BaseModel { return &e.BaseModel }
func (e *Episode) RelatedIDs(target Kind) []uuid.UUID {
	return related{e.RelatedMovies, e.RelatedSeries, e.RelatedPosts}.ids(target)
}

// Post is an editorial article.
type Post struct {
	BaseModel
	Title   string `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Content string `gorm:"type:text" json:"content"`
	Publication
}

func (p *Post) Kind() Kind { return KindPost }
func (p *Post) GetID() uuid.UUID { return p.ID }
func (p *Post) Pub() *Publication { return &p.Publication }
func (p *Post) SlugSource() string { return p.Title }
func (p *Post) RevalidatePath() string { return "/posts/" + p.Slug }
func (p *Post) Audit() *BaseModel { return &p.BaseModel }
