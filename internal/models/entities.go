package models

import "time"

// Collection names as they appear under "database" in a snapshot document.
const (
	CollectionProducts             = "products"
	CollectionServices             = "services"
	CollectionTechnicalServices    = "technicalServices"
	CollectionClients              = "clients"
	CollectionNeighborhoods        = "neighborhoods"
	CollectionDownloadablePrograms = "downloadablePrograms"
	CollectionSales                = "sales"
	CollectionExchanges            = "exchanges"
	CollectionTransactions         = "transactions"
	CollectionServiceOrders        = "serviceOrders"
	CollectionCategories           = "categories"
)

// CollectionNames lists every collection in snapshot order.
var CollectionNames = []string{
	CollectionProducts,
	CollectionServices,
	CollectionTechnicalServices,
	CollectionClients,
	CollectionNeighborhoods,
	CollectionDownloadablePrograms,
	CollectionSales,
	CollectionExchanges,
	CollectionTransactions,
	CollectionServiceOrders,
	CollectionCategories,
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	CostPrice   float64 `json:"costPrice"`
	SalePrice   float64 `json:"salePrice"`
	Stock       int     `json:"stock"`
	MinStock    int     `json:"minStock,omitempty"`
	Barcode     string  `json:"barcode,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Active      bool    `json:"active"`
}

// Service is used both for regular services and technical services.
type Service struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	ImageURL        string  `json:"imageUrl,omitempty"`
}

type Client struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Document       string    `json:"document,omitempty"`
	Address        string    `json:"address,omitempty"`
	NeighborhoodID string    `json:"neighborhoodId,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

type Neighborhood struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DeliveryFee float64 `json:"deliveryFee"`
}

type DownloadableProgram struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	DownloadURL string `json:"downloadUrl"`
	SizeLabel   string `json:"sizeLabel,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type SaleItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Sale references clients and products by ID only; nothing checks that the
// referenced records still exist.
type Sale struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"clientId,omitempty"`
	Items         []SaleItem `json:"items"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitzero"`
}

type Exchange struct {
	ID        string    `json:"id"`
	SaleID    string    `json:"saleId,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

type Transaction struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // "income" or "expense"
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

type ServiceOrder struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId,omitempty"`
	Equipment string    `json:"equipment,omitempty"`
	Problem   string    `json:"problem,omitempty"`
	Status    string    `json:"status"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Database is the full set of entity collections.
type Database struct {
	Products             []Product             `json:"products"`
	Services             []Service             `json:"services"`
	TechnicalServices    []Service             `json:"technicalServices"`
	Clients              []Client              `json:"clients"`
	Neighborhoods        []Neighborhood        `json:"neighborhoods"`
	DownloadablePrograms []DownloadableProgram `json:"downloadablePrograms"`
	Sales                []Sale                `json:"sales"`
	Exchanges            []Exchange            `json:"exchanges"`
	Transactions         []Transaction         `json:"transactions"`
	ServiceOrders        []ServiceOrder        `json:"serviceOrders"`
	Categories           []string              `json:"categories"`
}

// Normalize replaces nil collections with empty ones so that absent
// collections serialize as [] rather than null.
func (d *Database) Normalize() {
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Services == nil {
		d.Services = []Service{}
	}
	if d.TechnicalServices == nil {
		d.TechnicalServices = []Service{}
	}
	if d.Clients == nil {
		d.Clients = []Client{}
	}
	if d.Neighborhoods == nil {
		d.Neighborhoods = []Neighborhood{}
	}
	if d.DownloadablePrograms == nil {
		d.DownloadablePrograms = []DownloadableProgram{}
	}
	if d.Sales == nil {
		d.Sales = []Sale{}
	}
	if d.Exchanges == nil {
		d.Exchanges = []Exchange{}
	}
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
	if d.ServiceOrders == nil {
		d.ServiceOrders = []ServiceOrder{}
	}
	if d.Categories == nil {
		d.Categories = []string{}
	}
}

// Counts reports the number of records in each collection.
func (d *Database) Counts() map[string]int {
	return map[string]int{
		CollectionProducts:             len(d.Products),
		CollectionServices:             len(d.Services),
		CollectionTechnicalServices:    len(d.TechnicalServices),
		CollectionClients:              len(d.Clients),
		CollectionNeighborhoods:        len(d.Neighborhoods),
		CollectionDownloadablePrograms: len(d.DownloadablePrograms),
		CollectionSales:                len(d.Sales),
		CollectionExchanges:            len(d.Exchanges),
		CollectionTransactions:         len(d.Transactions),
		CollectionServiceOrders:        len(d.ServiceOrders),
		CollectionCategories:           len(d.Categories),
	}
}
