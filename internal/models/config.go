package models

// SiteConfig is the single site-wide configuration record.
type SiteConfig struct {
	PrimaryColor   string                 `json:"primaryColor"`
	SecondaryColor string                 `json:"secondaryColor"`
	SiteLogo       string                 `json:"siteLogo,omitempty"`
	AdminLogo      string                 `json:"adminLogo,omitempty"`
	AdminTitle     string                 `json:"adminTitle,omitempty"`
	AdminSubtitle  string                 `json:"adminSubtitle,omitempty"`
	HeroBanners    []HeroBanner           `json:"heroBanners"`
	Pages          map[string]PageContent `json:"pages"`
	Contact        ContactInfo            `json:"contact"`
}

type HeroBanner struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	LinkURL  string `json:"linkUrl,omitempty"`
}

// PageContent holds the text and color overrides for one public page.
type PageContent struct {
	Title           string `json:"title,omitempty"`
	Text            string `json:"text,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

type ContactInfo struct {
	WhatsApp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Preferences is the branding and theme subset of SiteConfig. Pointer fields
// distinguish "absent from the document" from "set to empty".
type Preferences struct {
	PrimaryColor   *string `json:"primaryColor,omitempty"`
	SecondaryColor *string `json:"secondaryColor,omitempty"`
	SiteLogo       *string `json:"siteLogo,omitempty"`
	AdminLogo      *string `json:"adminLogo,omitempty"`
	AdminTitle     *string `json:"adminTitle,omitempty"`
	AdminSubtitle  *string `json:"adminSubtitle,omitempty"`
}

// DefaultSiteConfig is used when nothing has been persisted yet.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		PrimaryColor:   "#1e3a8a",
		SecondaryColor: "#f59e0b",
		AdminTitle:     "CRINF",
		AdminSubtitle:  "Painel Administrativo",
		HeroBanners:    []HeroBanner{},
		Pages:          map[string]PageContent{},
	}
}

// Normalize replaces nil banners and pages with empty values so that a config
// survives a JSON round trip unchanged.
func (c *SiteConfig) Normalize() {
	if c.HeroBanners == nil {
		c.HeroBanners = []HeroBanner{}
	}
	if c.Pages == nil {
		c.Pages = map[string]PageContent{}
	}
}

// PreferencesOf extracts the preference fields of cfg.
func PreferencesOf(cfg SiteConfig) Preferences {
	return Preferences{
		PrimaryColor:   &cfg.PrimaryColor,
		SecondaryColor: &cfg.SecondaryColor,
		SiteLogo:       &cfg.SiteLogo,
		AdminLogo:      &cfg.AdminLogo,
		AdminTitle:     &cfg.AdminTitle,
		AdminSubtitle:  &cfg.AdminSubtitle,
	}
}

// Apply copies every preference present in p onto cfg.
func (p Preferences) Apply(cfg SiteConfig) SiteConfig {
	if p.PrimaryColor != nil {
		cfg.PrimaryColor = *p.PrimaryColor
	}
	if p.SecondaryColor != nil {
		cfg.SecondaryColor = *p.SecondaryColor
	}
	if p.SiteLogo != nil {
		cfg.SiteLogo = *p.SiteLogo
	}
	if p.AdminLogo != nil {
		cfg.AdminLogo = *p.AdminLogo
	}
	if p.AdminTitle != nil {
		cfg.AdminTitle = *p.AdminTitle
	}
	if p.AdminSubtitle != nil {
		cfg.AdminSubtitle = *p.AdminSubtitle
	}
	return cfg
}
