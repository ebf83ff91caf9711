package entity

import (
	"github.com/Favour123/paystack-api/internal/domain/entity/book"
	"github.com/Favour123/paystack-api/internal/domain/entity/download"
	"github.com/Favour123/paystack-api/internal/domain/entity/purchase"
)

type (
	Book          = book.Book
	Purchase      = purchase.Purchase
	DownloadEvent = download.Event
)
