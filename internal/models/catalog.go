package models

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// DefaultTagColor is used when a tag is created without a color
const DefaultTagColor = "#FF0000"

type Tag struct {
	ID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name  string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Slug  string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Color string    `gorm:"size:7;not null;default:'#FF0000'" json:"color"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	return nil
}

// Ingredient keeps its name as entered. SearchName is the folded form used
// for lookups and uniqueness.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name            string    `gorm:"size:60;not null" json:"name"`
	SearchName      string    `gorm:"size:60;uniqueIndex;not null" json:"-"`
	MeasurementUnit string    `gorm:"size:60;not null" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.SearchName = FoldName(i.Name)
	return nil
}

// FoldName collapses whitespace and lower-cases name in a language neutral way
func FoldName(name string) string {
	// a Caser keeps state, so one is created per call
	return cases.Lower(language.Und).String(CleanName(name))
}

// CleanName trims name and collapses inner whitespace
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCartItem{},
	}
}
