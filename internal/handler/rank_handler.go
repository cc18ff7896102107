package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/AlienQ7/Task/internal/logger"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// rankView 是等级表条目渲染到页面的形态。
type rankView struct {
	Threshold   int
	Title       string
	Description template.HTML
	Current     bool
}

// ShowRanks 渲染等级说明页，按门槛升序列出所有等级，标出当前等级。
func (a *API) ShowRanks(c *gin.Context) {
	username := currentUsername(c)

	snap, err := a.progression.Overview(username)
	if err != nil {
		logger.S.Errorw("failed to load ranks page", "username", username, "error", err)
		c.String(http.StatusInternalServerError, "内部错误，请稍后再试")
		return
	}

	table := a.progression.Ranks()
	views := make([]rankView, 0, len(table))
	for i := len(table) - 1; i >= 0; i-- {
		rank := table[i]
		rendered, err := renderMarkdown(rank.Description)
		if err != nil {
			logger.S.Warnw("failed to render rank description", "rank", rank.Title, "error", err)
			rendered = template.HTML(template.HTMLEscapeString(rank.Description))
		}
		views = append(views, rankView{
			Threshold:   rank.Threshold,
			Title:       rank.Title,
			Description: rendered,
			Current:     rank.Title == snap.User.Rank,
		})
	}

	c.HTML(http.StatusOK, "ranks.html", gin.H{
		"title":         "等级之路",
		"username":      username,
		"ranks":         views,
		"rank":          snap.User.Rank,
		"checkinPoints": snap.User.CheckinPoints,
	})
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
