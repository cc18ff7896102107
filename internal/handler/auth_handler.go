package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/AlienQ7/Task/internal/logger"
	"github.com/AlienQ7/Task/internal/service"
)

const sessionUserKey = "username"

// ShowAuthPage 渲染登录/注册页面
func (a *API) ShowAuthPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get(sessionUserKey) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "auth.html", gin.H{
		"title": "登录",
	})
}

// Signup 处理注册请求，成功后直接建立会话进入面板
func (a *API) Signup(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := a.auth.Register(username, password)
	if err != nil {
		a.renderAuthError(c, "signup", err)
		return
	}

	logger.S.Infow("user registered", "username", user.Username)
	a.establishSession(c, user.Username)
}

// Login 处理登录请求
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := a.auth.Login(username, password)
	if err != nil {
		a.renderAuthError(c, "login", err)
		return
	}

	a.establishSession(c, user.Username)
}

// Logout 清除会话并回到登录页
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logger.S.Warnw("failed to clear session", "error", err)
	}
	c.Redirect(http.StatusFound, "/auth")
}

// DeleteAccount 永久删除当前账号及其全部任务
func (a *API) DeleteAccount(c *gin.Context) {
	username := currentUsername(c)

	if err := a.auth.DeleteAccount(username); err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logger.S.Warnw("failed to clear session", "error", err)
	}

	logger.S.Infow("account deleted", "username", username)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) establishSession(c *gin.Context, username string) {
	session := sessions.Default(c)
	session.Set(sessionUserKey, username)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "auth.html", gin.H{
			"title": "登录",
			"error": "会话保存失败",
		})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// renderAuthError 把认证错误回显到登录页，mode 决定表单初始停留在哪个页签。
func (a *API) renderAuthError(c *gin.Context, mode string, err error) {
	status := http.StatusInternalServerError
	message := "内部错误，请稍后再试"
	switch {
	case errors.Is(err, service.ErrWeakCredentials):
		status = http.StatusBadRequest
		message = "用户名至少 3 个字符，密码至少 5 个字符"
	case errors.Is(err, service.ErrUsernameTaken):
		status = http.StatusConflict
		message = "用户名已被占用"
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "用户名或密码错误"
	}
	c.HTML(status, "auth.html", gin.H{
		"title": "登录",
		"mode":  mode,
		"error": message,
	})
}

// AuthRequired 会话认证中间件：未登录的页面请求重定向到 /auth，
// API 请求返回 401 JSON。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		username := session.Get(sessionUserKey)
		if username == nil {
			if isAPIRequest(c) {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "请先登录"})
			} else {
				c.Redirect(http.StatusFound, "/auth")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}

func isAPIRequest(c *gin.Context) bool {
	return len(c.Request.URL.Path) >= 5 && c.Request.URL.Path[:5] == "/api/"
}

func currentUsername(c *gin.Context) string {
	session := sessions.Default(c)
	if v, ok := session.Get(sessionUserKey).(string); ok {
		return v
	}
	return ""
}
