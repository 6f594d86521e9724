package rest

import (
	"crypto/sha256"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"easystay-service/internal/core/port/usecases_port"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxLoginBodyBytes = 1 << 16

type AffiliateHandler struct {
	trackClickUC usecases_port.TrackReferralClickUseCase
	loginUC      usecases_port.LoginAffiliateUseCase
	dashboardUC  usecases_port.GetAffiliateDashboardUseCase
	siteBaseURL  string
}

func NewAffiliateHandler(
	trackClickUC usecases_port.TrackReferralClickUseCase,
	loginUC usecases_port.LoginAffiliateUseCase,
	dashboardUC usecases_port.GetAffiliateDashboardUseCase,
	siteBaseURL string,
) *AffiliateHandler {
	return &AffiliateHandler{
		trackClickUC: trackClickUC,
		loginUC:      loginUC,
		dashboardUC:  dashboardUC,
		siteBaseURL:  strings.TrimRight(siteBaseURL, "/"),
	}
}

// Redirect - GET /r/{code}: учитывает переход и уводит на лендинг с ?ref=code
func (h *AffiliateHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	code := chi.URLParam(r, "code")
	handlerLogger := logger.WithFields(port.Fields{"handler": "Redirect", "code": code})

	link, err := h.trackClickUC.Execute(r.Context(), domain.ReferralClick{
		Code:      code,
		IPHash:    hashIP(clientIP(r)),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) || errors.Is(err, domain.ErrLinkInactive) {
			WriteJSONError(w, http.StatusNotFound, "Referral link not found")
			return
		}
		handlerLogger.Error("Track referral click use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to process referral link")
		return
	}

	target, err := buildRedirectURL(h.siteBaseURL, link.LandingPath, link.Code)
	if err != nil {
		handlerLogger.Error("Failed to build redirect URL", err, port.Fields{"landing_path": link.LandingPath})
		WriteJSONError(w, http.StatusInternalServerError, "Failed to process referral link")
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Login - POST /api/affiliates/login
func (h *AffiliateHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	handlerLogger := logger.WithFields(port.Fields{"handler": "Login"})

	var req LoginRequestDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		WriteJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	affiliate, token, err := h.loginUC.Execute(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		handlerLogger.Error("Login use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	RespondWithJSON(w, http.StatusOK, LoginResponseDTO{Token: token, Affiliate: toAffiliateDTO(affiliate)})
}

// Dashboard - GET /api/affiliates/me/dashboard, только после AuthMiddleware
func (h *AffiliateHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	claims, ok := contextkeys.ClaimsFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	handlerLogger := logger.WithFields(port.Fields{"handler": "Dashboard", "affiliate_id": claims.AffiliateID.String()})

	dashboard, err := h.dashboardUC.Execute(r.Context(), claims.AffiliateID)
	if err != nil {
		if errors.Is(err, domain.ErrAffiliateNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Affiliate not found")
			return
		}
		handlerLogger.Error("Dashboard use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	RespondWithJSON(w, http.StatusOK, toDashboardDTO(dashboard))
}

// clientIP - адрес клиента без порта. X-Forwarded-For учитывается, только если включен middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// hashIP - IP не храним в открытом виде
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// buildRedirectURL склеивает адрес сайта и путь лендинга и добавляет ref.
// Абсолютные URL в landing_path не допускаются, такой путь заменяется на "/".
func buildRedirectURL(siteBaseURL, landingPath, code string) (string, error) {
	path := strings.TrimSpace(landingPath)
	if path == "" || strings.Contains(path, "://") || strings.HasPrefix(path, "//") || strings.HasPrefix(path, `\`) {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u, err := url.Parse(siteBaseURL + path)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
