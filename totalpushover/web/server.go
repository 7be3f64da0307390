package web

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/boogah/total-pushover/totalpushover/admin"
	"github.com/boogah/total-pushover/totalpushover/hook"
	"github.com/boogah/total-pushover/totalpushover/metrics"
)

// PluginsPath is the plugin listing admin screen.
const PluginsPath = "/admin/plugins"

// API describes the admin and hook HTTP surface.
type API struct {
	Logger zerolog.Logger

	Hook       hook.MailHook
	Tester     *admin.Tester
	Notices    *admin.Notices
	Configured bool // whether both Pushover credentials are set, for display
}

// Handler builds the gin engine.
func (api *API) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.New("plugins").Parse(pluginsTemplate)))

	r.POST("/hooks/mail", api.mailHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	adm := r.Group("/admin", api.testTrigger)
	adm.GET("/plugins", api.pluginsHandler)

	return r
}

// Run runs the API instance at a given bind address.
func (api *API) Run(bind string) error {
	gin.SetMode(gin.ReleaseMode)
	api.Logger.Info().Str("bind", bind).Msg("Web server started")
	return api.Handler().Run(bind)
}
