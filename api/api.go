// Package api provides HTTP handlers for the chrona API.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/tesserahq/chrona/backfill"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/store"
)

// API wires all Forge-style HTTP handlers together for the chrona system.
type API struct {
	store  store.Store
	engine *backfill.Engine
	router forge.Router
}

// New creates an API from a store and a backfill engine.
func New(s store.Store, engine *backfill.Engine, router forge.Router) *API {
	return &API{store: s, engine: engine, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	a.RegisterRoutes(a.router)
	return a.router.Handler()
}

// RegisterRoutes registers all chrona API routes into the given Forge router
// with full OpenAPI metadata.
func (a *API) RegisterRoutes(router forge.Router) {
	a.registerConfigRoutes(router)
	a.registerDigestRoutes(router)
	a.registerBackfillRoutes(router)
}

// registerConfigRoutes registers schedule config management routes.
func (a *API) registerConfigRoutes(router forge.Router) {
	g := router.Group("/v1", forge.WithGroupTags("configs"))

	_ = g.POST("/configs", a.createConfig,
		forge.WithSummary("Create schedule config"),
		forge.WithDescription("Creates a digest schedule config after validating its cron expression."),
		forge.WithOperationID("createConfig"),
		forge.WithRequestSchema(CreateConfigRequest{}),
		forge.WithCreatedResponse(&digest.ScheduleConfig{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/configs", a.listConfigs,
		forge.WithSummary("List schedule configs"),
		forge.WithDescription("Returns the schedule configs of a project."),
		forge.WithOperationID("listConfigs"),
		forge.WithRequestSchema(ListConfigsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Schedule configs", []*digest.ScheduleConfig{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/configs/:configId", a.getConfig,
		forge.WithSummary("Get schedule config"),
		forge.WithDescription("Returns details of a specific schedule config."),
		forge.WithOperationID("getConfig"),
		forge.WithResponseSchema(http.StatusOK, "Schedule config details", &digest.ScheduleConfig{}),
		forge.WithErrorResponses(),
	)

	_ = g.DELETE("/configs/:configId", a.deleteConfig,
		forge.WithSummary("Delete schedule config"),
		forge.WithDescription("Permanently removes a schedule config."),
		forge.WithOperationID("deleteConfig"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

// registerDigestRoutes registers digest management routes.
func (a *API) registerDigestRoutes(router forge.Router) {
	g := router.Group("/v1", forge.WithGroupTags("digests"))

	_ = g.GET("/configs/:configId/digests", a.listDigests,
		forge.WithSummary("List digests"),
		forge.WithDescription("Returns the digests generated for a schedule config."),
		forge.WithOperationID("listDigests"),
		forge.WithRequestSchema(ListDigestsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Digest list", []*digest.Digest{}),
		forge.WithErrorResponses(),
	)

	_ = g.GET("/digests/:digestId", a.getDigest,
		forge.WithSummary("Get digest"),
		forge.WithDescription("Returns details of a specific digest."),
		forge.WithOperationID("getDigest"),
		forge.WithResponseSchema(http.StatusOK, "Digest details", &digest.Digest{}),
		forge.WithErrorResponses(),
	)

	_ = g.DELETE("/digests/:digestId", a.deleteDigest,
		forge.WithSummary("Delete digest"),
		forge.WithDescription("Permanently removes a digest."),
		forge.WithOperationID("deleteDigest"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

// registerBackfillRoutes registers the backfill route.
func (a *API) registerBackfillRoutes(router forge.Router) {
	g := router.Group("/v1", forge.WithGroupTags("backfill"))

	_ = g.POST("/configs/:configId/backfill", a.runBackfill,
		forge.WithSummary("Backfill digests"),
		forge.WithDescription("Reconciles a schedule config against history, creating missing digests over the lookback window."),
		forge.WithOperationID("backfillDigests"),
		forge.WithRequestSchema(BackfillRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Backfill outcome", BackfillResponse{}),
		forge.WithErrorResponses(),
	)
}
