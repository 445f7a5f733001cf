package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
	"shopauth/internal/gate"
	"shopauth/internal/netutil"
	"shopauth/internal/service"
)

type Handler struct {
	auth   service.AuthService
	google service.GoogleAuthService
	otp    service.OTPService

	// googleClientRedirect is where the callback bounces the browser with
	// the issued tokens (or an error) in the query string.
	googleClientRedirect string
}

func NewHandler(auth service.AuthService, google service.GoogleAuthService, otp service.OTPService, googleClientRedirect string) *Handler {
	return &Handler{auth: auth, google: google, otp: otp, googleClientRedirect: googleClientRedirect}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return netutil.NormalizeIP(strings.Split(xff, ",")[0])
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return netutil.NormalizeIP(xr)
	}
	return netutil.NormalizeIP(r.RemoteAddr)
}

func decode[T any](r *http.Request, into *T) error {
	return json.NewDecoder(r.Body).Decode(into)
}

func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.SendOTPRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Error.BadRequest"})
		return
	}
	if _, err := h.otp.Send(r.Context(), req.Email, req.Type); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "OTP sent"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Error.BadRequest"})
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Error.BadRequest"})
		return
	}
	pair, err := h.auth.Login(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Error.BadRequest"})
		return
	}
	pair, err := h.auth.RefreshToken(r.Context(), req.RefreshToken, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.LogoutRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Error.BadRequest"})
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logout successfully"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Error.BadRequest"})
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Change password successfully"})
}

func (h *Handler) SetupTwoFactorAuth(w http.ResponseWriter, r *http.Request) {
	actor, ok := gate.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	res, err := h.auth.SetupTwoFactorAuth(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) DisableTwoFactorAuth(w http.ResponseWriter, r *http.Request) {
	actor, ok := gate.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	var req dto.DisableTwoFactorRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Error.BadRequest"})
		return
	}
	proof, err := req.Proof()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.DisableTwoFactorAuth(r.Context(), actor.UserID, proof); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Disable 2FA successfully"})
}

func (h *Handler) GoogleLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.google.AuthorizationURL(r.UserAgent(), clientIP(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthorizationURLResponse{URL: link})
}

// GoogleCallback finishes the OAuth round-trip and hands the tokens back
// to the SPA via redirect query parameters.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pair, err := h.google.Callback(r.Context(), q.Get("code"), q.Get("state"))

	redirect, parseErr := url.Parse(h.googleClientRedirect)
	if parseErr != nil {
		writeError(w, r, parseErr)
		return
	}
	out := redirect.Query()
	if err != nil {
		out.Set("errorMessage", errorMessage(err))
	} else {
		out.Set("accessToken", pair.AccessToken)
		out.Set("refreshToken", pair.RefreshToken)
	}
	redirect.RawQuery = out.Encode()
	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

// Profile is a sample bearer-gated route: it echoes the identity and the
// resolved permissions the gate attached.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := gate.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	role, _ := gate.RolePermissionsFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user": actor,
		"role": role,
	})
}

// PaymentWebhook acknowledges provider callbacks. The gate has already
// checked the shared key, so the handler only has to accept the event.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var event map[string]any
	if err := decode(r, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Error.BadRequest"})
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Webhook received"})
}

func errorMessage(err error) string {
	if ae, ok := domain.AsAuthError(err); ok {
		return ae.Code
	}
	return "Error.Internal"
}
