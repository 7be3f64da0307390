package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/admin"
	"github.com/boogah/total-pushover/totalpushover/metrics"
)

const transport = "http"

// mailHandler is the synchronous outgoing-mail hook. The host posts the mail
// it is about to send; 200 hands it back for delivery, 204 means drop it.
func (api *API) mailHandler(c *gin.Context) {
	logger := api.Logger.With().Str("module", "handler.mail").Logger()
	logger.Debug().Msg("Request received")

	var mail totalpushover.Mail
	if err := c.ShouldBindJSON(&mail); err != nil {
		logger.Err(err).Msg("Error parsing mail")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mail, proceed := api.Hook.ApplyMail(c.Request.Context(), mail)
	metrics.ObserveDecision(transport, proceed)
	if !proceed {
		logger.Debug().Msg("Mail suppressed")
		c.Status(http.StatusNoContent)
		return
	}
	logger.Debug().Msg("Mail handed back for delivery")
	c.JSON(http.StatusOK, totalpushover.InterceptReply{Proceed: true, Mail: &mail})
}

// testTrigger runs the test notification when the admin request carries the
// trigger parameter, then redirects to the plugin listing. It runs before any
// admin handler so nothing has been written yet.
func (api *API) testTrigger(c *gin.Context) {
	if c.Query(totalpushover.TestQueryParam) != totalpushover.TestQueryValue {
		c.Next()
		return
	}
	logger := api.Logger.With().Str("module", "handler.test").Logger()

	if c.Writer.Written() {
		logger.Warn().Msg("Response already written, cannot redirect after test notification")
		c.Abort()
		return
	}

	_ = api.Tester.Run(c.Request.Context())
	c.Redirect(http.StatusFound, PluginsPath)
	c.Abort()
}

type pluginRow struct {
	Name       string
	Configured bool
	Links      []admin.ActionLink
}

func (api *API) pluginsHandler(c *gin.Context) {
	row := pluginRow{
		Name:       "Total Pushover",
		Configured: api.Configured,
		Links: admin.PrependTestLink([]admin.ActionLink{
			{Label: "Deactivate", URL: PluginsPath + "?action=deactivate&plugin=total-pushover"},
		}, c.Request.URL),
	}

	c.HTML(http.StatusOK, "plugins", gin.H{
		"Banner":  api.Notices.Render(c.Request.Context()),
		"Plugins": []pluginRow{row},
	})
}

const pluginsTemplate = `<!DOCTYPE html>
<html>
<head><title>Plugins</title></head>
<body>
{{- with .Banner}}
<div class="notice notice-{{.Kind}}{{if .Dismissible}} is-dismissible{{end}}"><p>{{.Message}}</p></div>
{{- end}}
<table class="plugins">
{{- range .Plugins}}
<tr>
<td class="plugin-title"><strong>{{.Name}}</strong>{{if not .Configured}} <em>(not configured)</em>{{end}}</td>
<td class="row-actions">{{range $i, $l := .Links}}{{if $i}} | {{end}}<a href="{{$l.URL}}">{{$l.Label}}</a>{{end}}</td>
</tr>
{{- end}}
</table>
</body>
</html>
`
