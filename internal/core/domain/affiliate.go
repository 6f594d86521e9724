package domain

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Affiliate - партнер реферальной программы
type Affiliate struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// CheckPassword сравнивает пароль с хэшем
func (a *Affiliate) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}

// HashPassword генерирует bcrypt-хэш пароля
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ReferralLink - реферальная ссылка партнера, ведет на лендинг сайта
type ReferralLink struct {
	ID             uuid.UUID
	AffiliateID    uuid.UUID
	Code           string
	LandingPath    string
	CommissionRate float64
	IsActive       bool
}

// ReferralClick - один переход по реферальной ссылке
type ReferralClick struct {
	ID        uuid.UUID
	LinkID    uuid.UUID
	Code      string
	IPHash    string
	UserAgent string
	Referer   string
	CreatedAt time.Time
}

// LinkPerformance - статистика по одной ссылке
type LinkPerformance struct {
	LinkID      uuid.UUID
	Code        string
	LandingPath string
	IsActive    bool
	Clicks      int64
	Referrals   int64
	Commission  float64
}

// AffiliateDashboard - сводка для кабинета партнера
type AffiliateDashboard struct {
	AffiliateID     uuid.UUID
	Links           []LinkPerformance
	TotalClicks     int64
	TotalReferrals  int64
	TotalCommission float64
}

// NewAffiliateDashboard считает итоги по ссылкам
func NewAffiliateDashboard(affiliateID uuid.UUID, links []LinkPerformance) *AffiliateDashboard {
	d := &AffiliateDashboard{
		AffiliateID: affiliateID,
		Links:       links,
	}
	if d.Links == nil {
		d.Links = []LinkPerformance{}
	}
	for _, l := range d.Links {
		d.TotalClicks += l.Clicks
		d.TotalReferrals += l.Referrals
		d.TotalCommission += l.Commission
	}
	return d
}

// Claims - данные из access-токена партнера
type Claims struct {
	AffiliateID uuid.UUID
	Email       string
}
