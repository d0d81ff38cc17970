package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ullas9525/portfolio/internal/content"
	"github.com/ullas9525/portfolio/internal/notice"
	"github.com/ullas9525/portfolio/internal/projects"
	"github.com/ullas9525/portfolio/internal/session"
	"github.com/ullas9525/portfolio/internal/skills"
	"github.com/ullas9525/portfolio/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookie = "portfolio_session"
	visitorKey    = "visitor"
)

// noticeRecheck is how soon a still-raised notice is polled again.
const noticeRecheck = 250 * time.Millisecond

type portfolio struct {
	site     *content.Site
	sessions *session.Store
	metrics  *store.DB
	renderer *projects.Renderer
}

func newPortfolio(site *content.Site, sessions *session.Store, metrics *store.DB) *portfolio {
	return &portfolio{
		site:     site,
		sessions: sessions,
		metrics:  metrics,
		renderer: projects.NewRenderer(),
	}
}

type pageView struct {
	Site     *content.Site
	Sections []sectionView
	Skills   skillsView
	Projects []projects.Record
	Modal    modalView
	Notice   noticeView
}

type sectionView struct {
	ID        string
	Title     string
	Nav       string
	Style     template.CSS
	Revealed  bool
	Threshold float64
	Page      *pageView
}

type skillsView struct {
	Tabs  []skills.Tab
	Items []string
}

type modalView struct {
	Open   bool
	Detail projects.Detail
}

type noticeView struct {
	Active    bool
	PollAfter string
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"pathEscape": url.PathEscape,
	}
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
}

func newRouter(p *portfolio, adm *admin) (*gin.Engine, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	r := gin.Default()
	r.SetHTMLTemplate(tmpl)
	r.Use(visitorTrackingMiddleware(p.metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Loading the page mounts a fresh set of components for the browser.
	r.GET("/", p.sessionMiddleware(true), p.home)

	ui := r.Group("/", p.sessionMiddleware(false))
	ui.POST("/sections/:id/reveal", p.revealSection)
	ui.GET("/skills/:category", p.selectCategory)
	ui.POST("/projects/:slug/open", p.openProject)
	ui.POST("/modal/close", p.closeProject)
	ui.POST("/resume/download", p.downloadResume)
	ui.GET("/resume/notice", p.resumeNotice)

	setupAdminRoutes(r, adm)
	return r, nil
}

// sessionMiddleware attaches the browser's visitor state, issuing a session
// cookie when the request has none.
func (p *portfolio) sessionMiddleware(mount bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			id = session.NewID()
		}

		var v *session.Visitor
		if mount {
			v, err = p.sessions.Mount(id)
		} else {
			v, err = p.sessions.Get(id)
		}
		if err != nil {
			id = session.NewID()
			v, err = p.sessions.Mount(id)
		}
		if err != nil {
			log.Printf("Error mounting session: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		c.Set(visitorKey, v)
		c.Next()
	}
}

func visitorFrom(c *gin.Context) *session.Visitor {
	return c.MustGet(visitorKey).(*session.Visitor)
}

func (p *portfolio) home(c *gin.Context) {
	page, err := p.page(visitorFrom(c))
	if err != nil {
		log.Printf("Error rendering page: %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong")
		return
	}
	c.HTML(http.StatusOK, "index.html", page)
}

func (p *portfolio) revealSection(c *gin.Context) {
	v := visitorFrom(c)
	id := c.Param("id")

	ratio := 1.0
	if raw := c.PostForm("ratio"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			c.Status(http.StatusBadRequest)
			return
		}
		ratio = parsed
	}

	if err := v.Intersect(id, ratio); err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	page, err := p.page(v)
	if err != nil {
		log.Printf("Error rendering section %s: %v", id, err)
		c.Status(http.StatusInternalServerError)
		return
	}
	for _, sec := range page.Sections {
		if sec.ID == id {
			c.HTML(http.StatusOK, "section.html", sec)
			return
		}
	}
	c.Status(http.StatusNotFound)
}

func (p *portfolio) selectCategory(c *gin.Context) {
	v := visitorFrom(c)
	name := c.Param("category")

	if err := v.Skills.Select(name); err != nil {
		if gin.Mode() == gin.DebugMode {
			log.Printf("Rejected skill tab: %v", err)
		}
		c.HTML(http.StatusNotFound, "skills.html", skillsFor(v))
		return
	}
	c.HTML(http.StatusOK, "skills.html", skillsFor(v))
}

func (p *portfolio) openProject(c *gin.Context) {
	v := visitorFrom(c)
	slug := c.Param("slug")

	record, err := p.site.ProjectCatalog.Lookup(slug)
	if errors.Is(err, projects.ErrUnknownProject) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error looking up project %s: %v", slug, err)
		c.Status(http.StatusInternalServerError)
		return
	}
	detail, err := p.renderer.Detail(record)
	if err != nil {
		log.Printf("Error rendering project %s: %v", slug, err)
		c.Status(http.StatusInternalServerError)
		return
	}
	v.Modal.Open(record)
	p.record(c, func(ctx context.Context) error { return p.metrics.RecordProjectView(ctx, slug) })

	c.HTML(http.StatusOK, "modal.html", modalView{Open: true, Detail: detail})
}

func (p *portfolio) closeProject(c *gin.Context) {
	visitorFrom(c).Modal.Close()
	c.HTML(http.StatusOK, "modal.html", modalView{})
}

func (p *portfolio) downloadResume(c *gin.Context) {
	v := visitorFrom(c)
	v.Notice.Trigger()
	p.record(c, p.metrics.RecordResumeRequest)

	c.HTML(http.StatusOK, "notice.html", noticeView{Active: v.Notice.Active(), PollAfter: cssDuration(v.Notice.Delay())})
}

func (p *portfolio) resumeNotice(c *gin.Context) {
	c.HTML(http.StatusOK, "notice.html", noticeFor(visitorFrom(c).Notice))
}

// record writes a metric without holding up the response. Do-Not-Track
// requests are not recorded.
func (p *portfolio) record(c *gin.Context, write func(context.Context) error) {
	if p.metrics == nil || c.GetHeader("DNT") == "1" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := write(ctx); err != nil {
			log.Printf("Error recording metric: %v", err)
		}
	}()
}

func (p *portfolio) page(v *session.Visitor) (*pageView, error) {
	page := &pageView{
		Site:     p.site,
		Skills:   skillsFor(v),
		Projects: p.site.ProjectCatalog.All(),
		Notice:   noticeFor(v.Notice),
	}

	switch sel := v.Modal.Selection().(type) {
	case projects.Some:
		detail, err := p.renderer.Detail(sel.Record)
		if err != nil {
			return nil, err
		}
		page.Modal = modalView{Open: true, Detail: detail}
	case projects.None:
	}

	for _, sec := range p.site.Sections {
		obs, ok := v.Reveal(sec.ID)
		if !ok {
			return nil, fmt.Errorf("section %s has no observer", sec.ID)
		}
		page.Sections = append(page.Sections, sectionView{
			ID:        sec.ID,
			Title:     sec.Title,
			Nav:       sec.NavLabel(),
			Style:     template.CSS(obs.Style().CSS()),
			Revealed:  obs.Revealed(),
			Threshold: obs.Config().Threshold,
			Page:      page,
		})
	}
	return page, nil
}

func skillsFor(v *session.Visitor) skillsView {
	return skillsView{Tabs: v.Skills.Tabs(), Items: v.Skills.Items()}
}

func noticeFor(n *notice.Controller) noticeView {
	return noticeView{Active: n.Active(), PollAfter: cssDuration(noticeRecheck)}
}

// cssDuration formats d the way htmx trigger delays expect, e.g. "3s" or "250ms".
func cssDuration(d time.Duration) string {
	if d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}

// Privacy-conscious visitor tracking middleware. Only full page loads are
// counted.
func visitorTrackingMiddleware(metrics *store.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if metrics == nil || c.Request.Method != http.MethodGet || path != "/" ||
			strings.EqualFold(c.GetHeader("HX-Request"), "true") {
			c.Next()
			return
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metrics.RecordVisit(ctx, ip, ua, path); err != nil {
				log.Printf("Error recording visitor: %v", err)
			}
		}()
		c.Next()
	}
}
