package fakers

import (
	"math/rand"
	"time"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

func ItemFaker(category *models.Category) *models.Item {
	title := faker.Sentence()
	itemSlug := slug.Make(title + "-" + uuid.NewString()[:6])

	item := &models.Item{
		Title:       title,
		Slug:        itemSlug,
		Description: faker.Paragraph(),
		Price:       fakePrice(),
		Currency:    "NZD",
		Status:      models.ItemStatusLive,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if category != nil {
		item.CategoryID = &category.ID
	}
	return item
}

func fakePrice() decimal.Decimal {
	cents := rand.Int63n(50000) + 100
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
}
