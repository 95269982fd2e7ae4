// Package auth はセッションベースの認証・認可を提供します。
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/trial-reports/internal/config"
)

const (
	// SessionCookieName はセッションクッキー名です。
	SessionCookieName = "tr_session"

	sessionKeyUser       = "auth_user"
	sessionKeyIssuedAt   = "issued_at"
	sessionKeyLastActive = "last_activity"
	sessionKeyCSRF       = "csrf_token"

	csrfHeader = "X-CSRF-Token"
)

var (
	maxSessionLifetime = 12 * time.Hour
	idleTimeout        = 30 * time.Minute
)

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(maxSessionLifetime.Seconds())
}

// ContextUserKey は、ハンドラー間でログイン済みユーザー名を共有するためのキーです。
const ContextUserKey = "auth.user"

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	cfg      *config.Config
	throttle *loginThrottle
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg:      cfg,
		throttle: newLoginThrottle(),
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login は /auth/login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "username と password を JSON で送ってください",
		})
		return
	}

	if err := m.ensureCredentials(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SERVER_MISCONFIGURATION",
			"message": err.Error(),
		})
		return
	}

	ip := c.ClientIP()
	if retryAfter := m.throttle.check(ip); retryAfter > 0 {
		c.Header("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":    "TOO_MANY_ATTEMPTS",
			"message": "一定時間後に再度お試しください",
		})
		return
	}

	if req.Username != m.cfg.AppUsername || !m.verifyPassword(req.Password) {
		remaining := m.throttle.fail(ip)
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":              "INVALID_CREDENTIALS",
			"message":           "ユーザー名またはパスワードが正しくありません",
			"remainingAttempts": remaining,
		})
		return
	}

	m.throttle.reset(ip)

	token, err := generateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_GENERATION_FAILED",
			"message": "CSRF トークンの生成に失敗しました",
		})
		return
	}

	session := sessions.Default(c)
	now := time.Now()
	session.Set(sessionKeyUser, m.cfg.AppUsername)
	session.Set(sessionKeyIssuedAt, now.Unix())
	session.Set(sessionKeyLastActive, now.Unix())
	session.Set(sessionKeyCSRF, token)

	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの保存に失敗しました",
		})
		return
	}

	c.Header(csrfHeader, token)
	c.Status(http.StatusNoContent)
}

// Logout は /auth/logout のハンドラーです。
func (m *Manager) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "SESSION_SAVE_FAILED",
			"message": "セッションの削除に失敗しました",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Manager) ensureCredentials() error {
	if m.cfg.AppUsername == "" {
		return errors.New("APP_USERNAME が設定されていません")
	}
	if m.cfg.AppPasswordHash == "" {
		return errors.New("APP_PASSWORD_HASH が設定されていません")
	}
	if m.cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET が設定されていません")
	}
	return nil
}

func (m *Manager) verifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(m.cfg.AppPasswordHash), []byte(password)) == nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}
