package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-account-backend/internal/domain"
	"go-account-backend/internal/transport/http/ez"
	mdw "go-account-backend/internal/transport/http/middleware"
)

type authModule struct{ d Deps }

func (m *authModule) MountAPI(g *gin.RouterGroup) {
	ezPub := ez.New(g)

	type loginIn struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		Token string       `json:"token"`
		User  *domain.User `json:"user"`
	}
	ez.RegisterAction[loginIn, loginOut](ezPub, ez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, err := m.d.Users.GetByUsername(c.Request.Context(), in.Username)
			if err != nil {
				// 用户不存在和密码错误对外同一句话
				if errors.Is(err, domain.ErrUserNotFound) {
					return loginOut{}, ez.Unauthorized("invalid credentials")
				}
				return loginOut{}, err
			}
			if !m.d.Users.CheckPassword(u, in.Password) {
				return loginOut{}, ez.Unauthorized("invalid credentials")
			}
			tok, err := m.d.JWT.Issue(u.ID, u.Username, u.RoleNames())
			if err != nil {
				return loginOut{}, ez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, User: u}, nil
		},
	})

	// /me 及改密必须挂鉴权分组
	authed := g.Group("")
	authed.Use(mdw.AuthJWT(m.d.JWT, ""))
	ezAuth := ez.New(authed)

	ez.RegisterAction[struct{}, *domain.User](ezAuth, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			uid := c.GetUint("userId")
			if uid == 0 {
				return nil, ez.Unauthorized("unauthorized")
			}
			return cachedUser(c.Request.Context(), m.d, uid)
		},
	})

	type passwordIn struct {
		Old string `json:"old" binding:"required"`
		New string `json:"new" binding:"required,min=8"`
	}
	ez.RegisterAction[passwordIn, gin.H](ezAuth, ez.Action[passwordIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/me/password",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *passwordIn) (gin.H, error) {
			uid := c.GetUint("userId")
			if uid == 0 {
				return nil, ez.Unauthorized("unauthorized")
			}
			u, err := m.d.Users.GetByID(c.Request.Context(), uid)
			if err != nil {
				return nil, err
			}
			if !m.d.Users.CheckPassword(u, in.Old) {
				return nil, ez.Unauthorized("wrong password")
			}
			if err := m.d.Users.SetPassword(c.Request.Context(), u, in.New); err != nil {
				return nil, err
			}
			invalidateUser(c.Request.Context(), m.d, uid)
			return gin.H{"id": uid}, nil
		},
	})
}
