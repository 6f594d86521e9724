package rest

import (
	"easystay-service/internal/core/domain"

	"github.com/mmcloughlin/geohash"
)

// PropertyDTO - объект в ответе API, поля в camelCase для фронтенда
type PropertyDTO struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	NightlyPrice float64  `json:"nightlyPrice"`
	Rating       *float64 `json:"rating"`
	Capacity     int      `json:"capacity"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    float64  `json:"bathrooms"`
	ImageURL     *string  `json:"imageUrl"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Geohash      string   `json:"geohash,omitempty"`
	AddressLine  string   `json:"addressLine"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postalCode"`
	Country      string   `json:"country"`
}

type SearchResponseDTO struct {
	Properties []PropertyDTO `json:"properties"`
	Total      int           `json:"total"`
}

type PropertyResponseDTO struct {
	Property PropertyDTO `json:"property"`
}

func toPropertyDTO(p domain.Property) PropertyDTO {
	dto := PropertyDTO{
		ID:           p.ID.String(),
		Slug:         p.Slug,
		Name:         p.Name,
		NightlyPrice: p.NightlyPrice,
		Rating:       p.Rating,
		Capacity:     p.Capacity,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		ImageURL:     p.ImageURL,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		AddressLine:  p.AddressLine,
		City:         p.City,
		State:        p.State,
		PostalCode:   p.PostalCode,
		Country:      p.Country,
	}
	if p.HasCoordinates() {
		dto.Geohash = geohash.Encode(*p.Latitude, *p.Longitude)
	}
	return dto
}

func toPropertyDTOs(props []domain.Property) []PropertyDTO {
	dtos := make([]PropertyDTO, 0, len(props))
	for _, p := range props {
		dtos = append(dtos, toPropertyDTO(p))
	}
	return dtos
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AffiliateDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type LoginResponseDTO struct {
	Token     string       `json:"token"`
	Affiliate AffiliateDTO `json:"affiliate"`
}

type LinkPerformanceDTO struct {
	LinkID      string  `json:"linkId"`
	Code        string  `json:"code"`
	LandingPath string  `json:"landingPath"`
	IsActive    bool    `json:"isActive"`
	Clicks      int64   `json:"clicks"`
	Referrals   int64   `json:"referrals"`
	Commission  float64 `json:"commission"`
}

type DashboardResponseDTO struct {
	AffiliateID     string               `json:"affiliateId"`
	Links           []LinkPerformanceDTO `json:"links"`
	TotalClicks     int64                `json:"totalClicks"`
	TotalReferrals  int64                `json:"totalReferrals"`
	TotalCommission float64              `json:"totalCommission"`
}

func toAffiliateDTO(a *domain.Affiliate) AffiliateDTO {
	return AffiliateDTO{ID: a.ID.String(), Email: a.Email, Name: a.Name}
}

func toDashboardDTO(d *domain.AffiliateDashboard) DashboardResponseDTO {
	links := make([]LinkPerformanceDTO, 0, len(d.Links))
	for _, l := range d.Links {
		links = append(links, LinkPerformanceDTO{
			LinkID:      l.LinkID.String(),
			Code:        l.Code,
			LandingPath: l.LandingPath,
			IsActive:    l.IsActive,
			Clicks:      l.Clicks,
			Referrals:   l.Referrals,
			Commission:  l.Commission,
		})
	}
	return DashboardResponseDTO{
		AffiliateID:     d.AffiliateID.String(),
		Links:           links,
		TotalClicks:     d.TotalClicks,
		TotalReferrals:  d.TotalReferrals,
		TotalCommission: d.TotalCommission,
	}
}
