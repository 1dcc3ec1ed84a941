package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidtube/internal/domain"
	"vidtube/internal/service"
	"vidtube/internal/storage"
	"vidtube/internal/token"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	sessions     service.SessionService
	signer       *token.Signer
	media        storage.Service
	bucket       string
	cookieSecure bool
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

func NewHandler(sessions service.SessionService, signer *token.Signer, media storage.Service, bucket string, cookieSecure bool, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		sessions:     sessions,
		signer:       signer,
		media:        media,
		bucket:       bucket,
		cookieSecure: cookieSecure,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", h.register)
			users.POST("/login", h.login)
			users.POST("/refresh-token", h.refreshToken)

			authed := users.Group("", RequireAuth(h.sessions, h.signer))
			authed.POST("/logout", h.logout)
			authed.GET("/me", h.currentUser)
		}

		api.GET("/media/objects", RequireAuth(h.sessions, h.signer), h.listMedia)
		api.GET("/jokes/random", h.randomJoke)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func (h *Handler) register(c *gin.Context) {
	in := service.RegisterInput{
		FullName: c.PostForm("fullName"),
		Email:    c.PostForm("email"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	avatar, closeAvatar, err := formFile(c, "avatar")
	if err != nil {
		respondError(c, err)
		return
	}
	if closeAvatar != nil {
		defer closeAvatar()
	}
	in.Avatar = avatar

	cover, closeCover, err := formFile(c, "coverImage")
	if err != nil {
		respondError(c, err)
		return
	}
	if closeCover != nil {
		defer closeCover()
	}
	in.CoverImage = cover

	user, err := h.sessions.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, user, "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("invalid request body: %w", domain.ErrValidation))
		return
	}

	user, pair, err := h.sessions.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "user logged in successfully")
}

func (h *Handler) logout(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	h.clearAuthCookies(c)
	respond(c, http.StatusOK, gin.H{}, "user logged out")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) refreshToken(c *gin.Context) {
	incoming, _ := c.Cookie("refreshToken")
	if incoming == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			incoming = req.RefreshToken
		}
	}

	_, pair, err := h.sessions.Refresh(c.Request.Context(), incoming)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "access token refreshed")
}

func (h *Handler) currentUser(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	respond(c, http.StatusOK, user, "current user fetched successfully")
}

type MediaObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	URL          string  `json:"url,omitempty"`
	LastModified *string `json:"lastModified,omitempty"`
}

const mediaLinkTTL = 15 * time.Minute

func (h *Handler) listMedia(c *gin.Context) {
	objects, err := h.media.ListObjects(c.Request.Context(), h.bucket, c.Query("prefix"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]MediaObjectResponse, len(objects))
	for i, obj := range objects {
		resp[i] = MediaObjectResponse{
			Key:  obj.Key,
			Size: obj.Size,
		}
		if url, err := h.media.GetObjectURL(c.Request.Context(), h.bucket, obj.Key, mediaLinkTTL); err == nil {
			resp[i].URL = url
		}
		if obj.LastModified != nil && !obj.LastModified.IsZero() {
			v := obj.LastModified.Format(time.RFC3339)
			resp[i].LastModified = &v
		}
	}
	respond(c, http.StatusOK, resp, "media objects fetched successfully")
}

// formFile pulls the first uploaded file for the given field, or nil
// when the field is absent.
func formFile(c *gin.Context, field string) (*service.MediaFile, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("invalid %s file: %w", field, domain.ErrValidation)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open %s file: %w", field, err)
	}

	return &service.MediaFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func (h *Handler) setAuthCookies(c *gin.Context, pair token.Pair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("accessToken", pair.AccessToken, int(h.accessTTL.Seconds()), "/", "", h.cookieSecure, true)
	c.SetCookie("refreshToken", pair.RefreshToken, int(h.refreshTTL.Seconds()), "/", "", h.cookieSecure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("accessToken", "", -1, "/", "", h.cookieSecure, true)
	c.SetCookie("refreshToken", "", -1, "/", "", h.cookieSecure, true)
}
