package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/openformhq/openform/config"
	"github.com/openformhq/openform/otp"
)

// App bundles the process-wide dependencies handlers need. Constructed once
// in main and passed down explicitly; there are no package-level singletons.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
	Codes otp.Sender
}
