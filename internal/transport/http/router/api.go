package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-account-backend/internal/core/auth"
	"go-account-backend/internal/core/cache"
	"go-account-backend/internal/domain"
	"go-account-backend/internal/service"
	mdw "go-account-backend/internal/transport/http/middleware"
)

type Deps struct {
	Log   *zap.Logger
	Roles *service.RoleService
	Users *service.UserService
	Cache *cache.Cache
	JWT   *auth.JWTer
}

// NewEngine 单进程同时挂 /api/v1（用户侧）和 /admin/v1（管理侧，admin 角色）
func NewEngine(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		cors.Default(),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	MountAllAPI(api) // 外部 Register 的扩展模块
	(&authModule{d}).MountAPI(api)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, "admin"))
	MountAllAdmin(admin)
	(&rolesModule{d}).MountAdmin(admin)
	(&usersModule{d}).MountAdmin(admin)

	return r
}

const userCacheTTL = 30 * time.Second

func userKey(id uint) string { return fmt.Sprintf("user:%d", id) }

// cachedUser 读穿透；未命中用户走负缓存，写路径用 invalidateUser 清键
func cachedUser(ctx context.Context, d Deps, id uint) (*domain.User, error) {
	if d.Cache == nil {
		return d.Users.GetByID(ctx, id)
	}
	u, err := cache.GetOrLoadJSON[domain.User](d.Cache, ctx, userKey(id), userCacheTTL, func(ctx context.Context) (*domain.User, error) {
		u, err := d.Users.GetByID(ctx, id)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return u, err
	})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %d: %w", id, domain.ErrUserNotFound)
	}
	return u, nil
}

func invalidateUser(ctx context.Context, d Deps, id uint) {
	if d.Cache != nil {
		d.Cache.Invalidate(ctx, userKey(id))
	}
}
