package templates

import (
	"time"
)

// Brand carries the sender identity stamped on every email.
type Brand struct {
	AppName     string
	CompanyName string
	LogoURL     string
	SupportURL  string
	SiteURL     string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithChanges(ch map[string]string) Option {
	return func(d *EmailData) { d.Changes = ch }
}

// NewBaseEmailData fills the common fields from brand, then applies opts.
func NewBaseEmailData(brand Brand, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		AppName:     brand.AppName,
		CompanyName: brand.CompanyName,
		LogoURL:     brand.LogoURL,
		SupportURL:  brand.SupportURL,
		SiteURL:     brand.SiteURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(brand Brand, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(brand, Welcome, name, email, opts...))
}

func NewProfileUpdatedData(brand Brand, name, email string, changes map[string]string, opts ...Option) map[string]any {
	opts = append([]Option{WithChanges(changes)}, opts...)
	return ToMap(NewBaseEmailData(brand, ProfileUpdated, name, email, opts...))
}
