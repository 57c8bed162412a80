package snapshot_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crinf-backoffice/internal/models"
	"crinf-backoffice/internal/snapshot"
)

func fixedCodec() *snapshot.Codec {
	return &snapshot.Codec{Now: func() time.Time {
		return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	}}
}

func sampleState() (models.Database, models.SiteConfig) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	db := models.Database{
		Products: []models.Product{
			{ID: "p1", Name: "Mouse USB", Category: "Perifericos", CostPrice: 12.5, SalePrice: 29.9, Stock: 10, Active: true},
			{ID: "p2", Name: "Teclado", SalePrice: 89, Stock: 0},
		},
		Services:          []models.Service{{ID: "s1", Name: "Formatacao", Price: 80, DurationMinutes: 120}},
		TechnicalServices: []models.Service{{ID: "t1", Name: "Troca de tela", Price: 250}},
		Clients:           []models.Client{{ID: "c1", Name: "Ana", Phone: "11999990000", CreatedAt: created}},
		Neighborhoods:     []models.Neighborhood{{ID: "n1", Name: "Centro", DeliveryFee: 5}},
		DownloadablePrograms: []models.DownloadableProgram{
			{ID: "d1", Name: "Driver", DownloadURL: "https://example.com/driver.zip"},
		},
		Sales: []models.Sale{{
			ID:        "v1",
			ClientID:  "c1",
			Items:     []models.SaleItem{{ProductID: "p1", Quantity: 2, UnitPrice: 29.9}},
			Total:     59.8,
			CreatedAt: created,
		}},
		Exchanges:     []models.Exchange{{ID: "e1", SaleID: "v1", Reason: "defeito", CreatedAt: created}},
		Transactions:  []models.Transaction{{ID: "x1", Kind: "income", Amount: 59.8, CreatedAt: created}},
		ServiceOrders: []models.ServiceOrder{{ID: "o1", ClientID: "c1", Status: "open", Price: 80, CreatedAt: created}},
		Categories:    []string{"Perifericos", "Cabos"},
	}
	cfg := models.SiteConfig{
		PrimaryColor:   "#112233",
		SecondaryColor: "#445566",
		SiteLogo:       "https://example.com/logo.png",
		AdminTitle:     "CRINF",
		HeroBanners:    []models.HeroBanner{{ID: "b1", Title: "Promo"}},
		Pages:          map[string]models.PageContent{"home": {Title: "Bem-vindo", TextColor: "#000000"}},
		Contact:        models.ContactInfo{WhatsApp: "11999990000"},
	}
	return db, cfg
}

func TestExportImport_RoundTrip(t *testing.T) {
	codec := fixedCodec()
	db, cfg := sampleState()

	data, err := codec.Export(db, cfg)
	require.NoError(t, err)

	doc, err := codec.Import(data)
	require.NoError(t, err)
	assert.Equal(t, snapshot.FormatVersion, doc.Version)
	assert.Equal(t, "2024-05-06T07:08:09Z", doc.Timestamp)
	assert.Equal(t, db, doc.Database)
	assert.Equal(t, cfg, doc.Config)
}

func TestExportImport_DefaultConfigRoundTrip(t *testing.T) {
	codec := fixedCodec()
	cfg := models.DefaultSiteConfig()
	cfg.HeroBanners = []models.HeroBanner{}

	data, err := codec.Export(models.Database{}, cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"heroBanners": []`)
	assert.Contains(t, string(data), `"pages": {}`)

	doc, err := codec.Import(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, doc.Config)
}

func TestImport_MissingConfigListsAreEmpty(t *testing.T) {
	doc, err := snapshot.NewCodec().Import([]byte(`{"config": {"primaryColor": "#000000", "pages": null}}`))
	require.NoError(t, err)

	assert.NotNil(t, doc.Config.HeroBanners)
	assert.NotNil(t, doc.Config.Pages)
	assert.Empty(t, doc.Config.Pages)
}

func TestExportImport_SingleClient(t *testing.T) {
	codec := fixedCodec()
	db := models.Database{
		Products: []models.Product{},
		Clients:  []models.Client{{ID: "c1", Name: "Ana"}},
	}

	data, err := codec.Export(db, models.DefaultSiteConfig())
	require.NoError(t, err)

	doc, err := codec.Import(data)
	require.NoError(t, err)
	require.Len(t, doc.Database.Clients, 1)
	assert.Equal(t, "c1", doc.Database.Clients[0].ID)
	assert.Equal(t, "Ana", doc.Database.Clients[0].Name)
	assert.Empty(t, doc.Database.Products)
}

func TestExport_EmptyCollectionsAreArrays(t *testing.T) {
	data, err := fixedCodec().Export(models.Database{}, models.DefaultSiteConfig())
	require.NoError(t, err)

	var raw struct {
		Database map[string]json.RawMessage `json:"database"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, name := range models.CollectionNames {
		assert.Equal(t, "[]", string(raw.Database[name]), name)
	}
}

func TestImport_Malformed(t *testing.T) {
	codec := snapshot.NewCodec()
	inputs := []string{
		"not json",
		"",
		"null",
		"[]",
		`{"database": {"products": "nope"}}`,
		`{"database": {"clients": [{"id": 1}]}}`,
		`{"version": "2.0", "database": {`,
	}
	for _, in := range inputs {
		doc, err := codec.Import([]byte(in))
		assert.Nil(t, doc, in)
		assert.True(t, errors.Is(err, snapshot.ErrMalformedDocument), "input %q: %v", in, err)
	}
}

func TestImport_Permissive(t *testing.T) {
	doc, err := snapshot.NewCodec().Import([]byte(`{
		"version": "0.1-legacy",
		"extra": {"ignored": true},
		"database": {
			"products": [{"id": "p1", "name": "Cabo HDMI", "color": "preto"}],
			"unknownCollection": [1, 2, 3]
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "0.1-legacy", doc.Version)
	require.Len(t, doc.Database.Products, 1)
	assert.Equal(t, "Cabo HDMI", doc.Database.Products[0].Name)
	assert.NotNil(t, doc.Database.Clients)
	assert.Empty(t, doc.Database.Clients)
	assert.NotNil(t, doc.Database.Categories)
}

func TestPreferences_RoundTrip(t *testing.T) {
	codec := fixedCodec()
	_, source := sampleState()

	data, err := codec.ExportPreferences(source)
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.Len(t, keys, 6)
	assert.NotContains(t, keys, "pages")

	current := models.DefaultSiteConfig()
	current.Contact.Email = "loja@example.com"
	applied, err := codec.ImportPreferences(data, current)
	require.NoError(t, err)

	assert.Equal(t, source.PrimaryColor, applied.PrimaryColor)
	assert.Equal(t, source.SiteLogo, applied.SiteLogo)
	assert.Equal(t, source.AdminTitle, applied.AdminTitle)
	assert.Equal(t, "loja@example.com", applied.Contact.Email)
	assert.Equal(t, current.Pages, applied.Pages)
}

func TestImportPreferences_OnlyPresentFields(t *testing.T) {
	current := models.DefaultSiteConfig()
	applied, err := snapshot.NewCodec().ImportPreferences([]byte(`{"primaryColor": "#ff0000", "pages": {"x": {}}}`), current)
	require.NoError(t, err)

	assert.Equal(t, "#ff0000", applied.PrimaryColor)
	assert.Equal(t, current.SecondaryColor, applied.SecondaryColor)
	assert.Equal(t, current.AdminTitle, applied.AdminTitle)
	assert.Empty(t, applied.Pages)
}

func TestImportPreferences_Malformed(t *testing.T) {
	current := models.DefaultSiteConfig()
	applied, err := snapshot.NewCodec().ImportPreferences([]byte("not json"), current)
	assert.True(t, errors.Is(err, snapshot.ErrMalformedDocument))
	assert.Equal(t, current, applied)
}

func TestFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "backup_crinf_1700000000123.json", snapshot.Filename("backup_crinf", at))
}
